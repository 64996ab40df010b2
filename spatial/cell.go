package spatial

import "github.com/paulmach/orb"

// Cell is a single node of a quad-prefix tree: a square (or, at the world
// cell, rectangular) region of the lat/lon plane identified by a token, with
// a level, a leaf flag, and the relation it bears to whatever shape produced
// it.
//
// Implementations are not required to be safe for concurrent use.
type Cell interface {
	// TokenBytesWithLeaf returns the cell's term, including its leaf bit, as
	// an 8-byte big-endian slice suitable for use as a sortable index term.
	TokenBytesWithLeaf() []byte

	// TokenBytesNoLeaf returns the same term with the leaf bit cleared.
	TokenBytesNoLeaf() []byte

	// Level returns the cell's depth; the world cell is level 0.
	Level() int

	// IsLeaf reports whether this cell terminates its branch: either because
	// it was marked a leaf explicitly, or because it sits at the tree's
	// maximum level.
	IsLeaf() bool

	// SetLeaf marks the cell as a leaf.
	SetLeaf()

	// ShapeRelation returns the relation last recorded against a query
	// shape via SetShapeRelation.
	ShapeRelation() Relation

	// SetShapeRelation records the cell's relation to a query shape.
	SetShapeRelation(r Relation)

	// Rectangle returns the cell's bounding rectangle in lat/lon degrees.
	Rectangle() orb.Bound

	// SubCells returns the four children of this cell in quadrant order
	// (NW, NE, SW, SE).
	SubCells() [4]Cell

	// CompareNoLeaf orders two cells by their tokens, ignoring the leaf bit
	// of both. It returns a negative number, zero, or a positive number as
	// c sorts before, equal to, or after other.
	CompareNoLeaf(other Cell) int
}
