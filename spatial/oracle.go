package spatial

import "github.com/paulmach/orb"

// ShapeRelationOracle is the narrow contract a shape must satisfy to be
// covered by a StreamingShapeIterator: it can tell the iterator how its
// rectangle relates to an arbitrary cell, and report its own bounding box.
// Callers adapt orb.Geometry (or any other representation) to this
// interface. The streaming iterator calls only Relate; its traversal always
// starts at the world cell's first child, not at the bounding box.
type ShapeRelationOracle interface {
	// Relate reports how rect relates to the shape: Disjoint if they share
	// no area, Within if rect lies entirely inside the shape, Contains if
	// the shape lies entirely inside rect, or Intersects otherwise.
	Relate(rect orb.Bound) Relation

	// BoundingBox returns the shape's own bounding box.
	BoundingBox() orb.Bound
}

// boundOracle adapts a plain orb.Bound to ShapeRelationOracle.
type boundOracle struct {
	bound orb.Bound
}

// NewBoundOracle returns a ShapeRelationOracle for a rectangular query
// shape.
func NewBoundOracle(b orb.Bound) ShapeRelationOracle {
	return &boundOracle{bound: b}
}

func (o *boundOracle) BoundingBox() orb.Bound {
	return o.bound
}

func (o *boundOracle) Relate(rect orb.Bound) Relation {
	if !RectsOverlap(o.bound, rect) {
		return Disjoint
	}
	if BoundContains(o.bound, rect) {
		return Within
	}
	if BoundContains(rect, o.bound) {
		return Contains
	}
	return Intersects
}

// RectsOverlap reports whether a and b share any area. It is exported for
// reuse by the termenum package's own cell tests.
func RectsOverlap(a, b orb.Bound) bool {
	return a.Min.X() < b.Max.X() && a.Max.X() > b.Min.X() &&
		a.Min.Y() < b.Max.Y() && a.Max.Y() > b.Min.Y()
}

// BoundContains reports whether outer entirely encloses inner, boundary
// inclusive.
func BoundContains(outer, inner orb.Bound) bool {
	return outer.Min.X() <= inner.Min.X() && outer.Max.X() >= inner.Max.X() &&
		outer.Min.Y() <= inner.Min.Y() && outer.Max.Y() >= inner.Max.Y()
}
