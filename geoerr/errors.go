// Package geoerr collects the sentinel errors shared across geocore's
// packages. Callers use errors.Is against these sentinels; wrapping is done
// with github.com/pkg/errors at the call site so every error carries a
// stack trace back to where it was raised.
package geoerr

import "errors"

var (
	// ErrInvalidConfiguration is returned when an Options value (or a
	// constructor taking equivalent parameters, such as a tree's
	// max_levels) fails validation before any work is attempted.
	ErrInvalidConfiguration = errors.New("geocore: invalid configuration")

	// ErrInvalidShape is the sentinel for a malformed query or index shape,
	// for use by shape relation oracles. No package in this module returns
	// it: a bounding box whose min longitude exceeds its max is treated as
	// crossing the antimeridian, the server's ring parser rejects short
	// rings with its own error, and distance radii are not validated.
	ErrInvalidShape = errors.New("geocore: invalid shape")

	// ErrEndOfIteration is returned by StreamingShapeIterator.Next once the
	// cover is exhausted; it is an expected terminal condition, not a
	// failure.
	ErrEndOfIteration = errors.New("geocore: end of iteration")

	// ErrInvariantViolation signals that a term read back from storage (or
	// produced internally) violates a structural invariant the tree
	// depends on: PackedQuadTree.ReadCell returns it for a term with no
	// sentinel bit or a level outside the tree's configured range, and
	// store.OpenTermReader for a term file whose size is not a multiple of
	// 8 bytes. It indicates corrupted input, never a normal query outcome.
	ErrInvariantViolation = errors.New("geocore: invariant violation")
)
