// Package termenum implements the acceptor filters used when scanning a
// sorted range of Morton-coded point terms: a cheap rectangle-level test
// that classifies whole candidate cells (letting a scan skip or
// short-circuit entire subranges), followed by an exact point-level
// refinement for terms a cell test could not fully resolve.
package termenum

import (
	"github.com/paulmach/orb"

	"geocore/bitcodec"
	"geocore/spatial"
)

// AcceptStatus is the outcome of testing a single candidate term.
type AcceptStatus int

const (
	// Reject means the term's point does not satisfy the filter.
	Reject AcceptStatus = iota
	// Accept means the term's point satisfies the filter.
	Accept
	// End means the scan has passed the last term the filter could ever
	// accept and may stop early.
	End
)

// BoundingBoxFilter accepts Morton-coded point terms whose decoded (lon,
// lat) falls inside a rectangular query, boundary inclusive.
type BoundingBoxFilter struct {
	bbox orb.Bound
}

// NewBoundingBoxFilter returns a filter for the given rectangle. bbox must
// not cross the antimeridian; use SplitAntimeridian for boxes that do.
func NewBoundingBoxFilter(bbox orb.Bound) *BoundingBoxFilter {
	return &BoundingBoxFilter{bbox: bbox}
}

// Box returns the filter's query rectangle.
func (f *BoundingBoxFilter) Box() orb.Bound {
	return f.bbox
}

// SplitAntimeridian returns the filter(s) needed to cover bbox. A box whose
// minimum longitude does not exceed its maximum is returned as a single
// filter; a box that crosses the antimeridian (min lon > max lon, e.g. a
// query spanning from 170 to -170 degrees) is split into an eastern
// [minLon, 180] filter and a western [-180, maxLon] filter, since every
// downstream cell test and range scan operates on a single contiguous
// interval.
func SplitAntimeridian(bbox orb.Bound) []*BoundingBoxFilter {
	if bbox.Min.X() <= bbox.Max.X() {
		return []*BoundingBoxFilter{NewBoundingBoxFilter(bbox)}
	}
	east := orb.Bound{Min: orb.Point{bbox.Min.X(), bbox.Min.Y()}, Max: orb.Point{180, bbox.Max.Y()}}
	west := orb.Bound{Min: orb.Point{-180, bbox.Min.Y()}, Max: orb.Point{bbox.Max.X(), bbox.Max.Y()}}
	return []*BoundingBoxFilter{NewBoundingBoxFilter(east), NewBoundingBoxFilter(west)}
}

// CellTest classifies rect (a candidate cell's rectangle, produced while
// walking a term range) against the query box: Disjoint if a scan may skip
// the whole cell, Contains if the query box encloses the cell so every point
// in it may be accepted without further inspection, Within if the query box
// lies entirely inside the cell, or Intersects otherwise. For Within and
// Intersects, individual terms must still be refined by AcceptTerm. The
// relation is stated from the query box's side, the transpose of
// spatial.ShapeRelationOracle's convention.
func (f *BoundingBoxFilter) CellTest(rect orb.Bound) spatial.Relation {
	if !spatial.RectsOverlap(f.bbox, rect) {
		return spatial.Disjoint
	}
	if spatial.BoundContains(f.bbox, rect) {
		return spatial.Contains
	}
	if spatial.BoundContains(rect, f.bbox) {
		return spatial.Within
	}
	return spatial.Intersects
}

// AcceptPoint applies the filter directly to a decoded coordinate.
func (f *BoundingBoxFilter) AcceptPoint(p orb.Point) AcceptStatus {
	if p.X() >= f.bbox.Min.X() && p.X() <= f.bbox.Max.X() &&
		p.Y() >= f.bbox.Min.Y() && p.Y() <= f.bbox.Max.Y() {
		return Accept
	}
	return Reject
}

// AcceptTerm decodes a Morton-coded point term and applies AcceptPoint. It
// is the point-level refinement step following a cell test result of
// Intersects.
func (f *BoundingBoxFilter) AcceptTerm(morton uint64) AcceptStatus {
	return f.AcceptPoint(orb.Point{bitcodec.MortonDecodeLon(morton), bitcodec.MortonDecodeLat(morton)})
}
