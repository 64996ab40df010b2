// Package config defines the validated options that select and size a
// geocore tree: which codec backs it, which iteration strategy a query
// uses, and how deep it goes.
package config

import (
	"math"

	"github.com/pkg/errors"

	"geocore/geoerr"
	"geocore/geohash"
	"geocore/spatial"
)

// Tree names which coordinate codec backs an index.
type Tree string

const (
	TreeGeohash  Tree = "geohash"
	TreeQuadtree Tree = "quadtree"
)

// Strategy names which iteration plan a query uses to walk a tree.
type Strategy string

const (
	StrategyTerm      Strategy = "term"
	StrategyRecursive Strategy = "recursive"
	StrategyStreaming Strategy = "streaming"
)

// Orientation names which winding order polygon rings are assumed to use.
type Orientation string

const (
	OrientationLeft  Orientation = "left"
	OrientationRight Orientation = "right"
)

const (
	minGeohashLevels  = 1
	maxGeohashLevels  = 24
	minQuadtreeLevels = 1
	maxQuadtreeLevels = spatial.MaxLevelsPossible
)

// Options configures a geocore index: which tree backs it, how queries walk
// it, and how deep it goes.
type Options struct {
	Tree     Tree
	Strategy Strategy

	// TreeLevels is the tree's maximum depth. Ignored if PrecisionMeters is
	// set; Validate resolves it from PrecisionMeters instead.
	TreeLevels int

	// PrecisionMeters, when > 0, overrides TreeLevels: Validate picks the
	// shallowest tree depth whose cells are no larger than this, using
	// geohash.LevelsForPrecision or this package's
	// quadtreeLevelsForPrecision depending on Tree.
	PrecisionMeters float64

	// DistanceErrorPct is the fraction of a query's extent tolerated as
	// slop. Validate checks that it lies in [0, 0.5]; no iterator or filter
	// in this module reads it, so it does not change any cover or query
	// result.
	DistanceErrorPct float64

	Orientation Orientation
}

// Validate checks Options for internal consistency, resolving TreeLevels
// from PrecisionMeters when the latter is set, and returns
// geoerr.ErrInvalidConfiguration wrapped with the offending field's detail
// for anything out of range.
func (o *Options) Validate() error {
	switch o.Tree {
	case TreeGeohash, TreeQuadtree:
	default:
		return errors.Wrapf(geoerr.ErrInvalidConfiguration, "unknown tree %q", o.Tree)
	}

	switch o.Strategy {
	case StrategyTerm, StrategyRecursive, StrategyStreaming:
	default:
		return errors.Wrapf(geoerr.ErrInvalidConfiguration, "unknown strategy %q", o.Strategy)
	}

	switch o.Orientation {
	case "", OrientationLeft, OrientationRight:
	default:
		return errors.Wrapf(geoerr.ErrInvalidConfiguration, "unknown orientation %q", o.Orientation)
	}

	if o.DistanceErrorPct < 0 || o.DistanceErrorPct > 0.5 {
		return errors.Wrapf(geoerr.ErrInvalidConfiguration, "distance_error_pct %f out of range [0, 0.5]", o.DistanceErrorPct)
	}

	if o.PrecisionMeters > 0 {
		switch o.Tree {
		case TreeGeohash:
			o.TreeLevels = geohash.LevelsForPrecision(o.PrecisionMeters)
		case TreeQuadtree:
			o.TreeLevels = quadtreeLevelsForPrecision(o.PrecisionMeters)
		}
		return nil
	}

	switch o.Tree {
	case TreeGeohash:
		if o.TreeLevels < minGeohashLevels || o.TreeLevels > maxGeohashLevels {
			return errors.Wrapf(geoerr.ErrInvalidConfiguration, "geohash tree_levels %d out of range [%d, %d]", o.TreeLevels, minGeohashLevels, maxGeohashLevels)
		}
	case TreeQuadtree:
		if o.TreeLevels < minQuadtreeLevels || o.TreeLevels > maxQuadtreeLevels {
			return errors.Wrapf(geoerr.ErrInvalidConfiguration, "quadtree tree_levels %d out of range [%d, %d]", o.TreeLevels, minQuadtreeLevels, maxQuadtreeLevels)
		}
	}

	return nil
}

// quadtreeLevelsForPrecision returns the shallowest quad-tree depth whose
// level-diagonal (using the tree's own fixed 2:1 world aspect ratio) is at
// most meters, mirroring geohash.LevelsForPrecision's step-function shape.
func quadtreeLevelsForPrecision(meters float64) int {
	const metersPerDegree = 111320.0
	worldW, worldH := 360.0, 180.0
	for level := minQuadtreeLevels; level < maxQuadtreeLevels; level++ {
		w := worldW / float64(uint64(1)<<uint(level))
		h := worldH / float64(uint64(1)<<uint(level))
		diagonal := math.Hypot(w, h) * metersPerDegree
		if diagonal <= meters {
			return level
		}
	}
	return maxQuadtreeLevels
}
