package termenum

import (
	"testing"

	"github.com/paulmach/orb"

	"geocore/bitcodec"
	"geocore/spatial"
	"geocore/util"
)

func TestBoundingBoxFilterAcceptsInsidePoint(t *testing.T) {
	f := NewBoundingBoxFilter(orb.Bound{Min: orb.Point{-10, -10}, Max: orb.Point{10, 10}})
	util.AssertEqual(t, Accept, f.AcceptPoint(orb.Point{0, 0}))
	util.AssertEqual(t, Reject, f.AcceptPoint(orb.Point{20, 20}))
	// Boundary is inclusive.
	util.AssertEqual(t, Accept, f.AcceptPoint(orb.Point{10, 10}))
}

func TestBoundingBoxFilterAcceptTermRoundTrip(t *testing.T) {
	f := NewBoundingBoxFilter(orb.Bound{Min: orb.Point{-10, -10}, Max: orb.Point{10, 10}})
	morton := bitcodec.MortonEncode(5, 5)
	util.AssertEqual(t, Accept, f.AcceptTerm(morton))

	morton = bitcodec.MortonEncode(150, 5)
	util.AssertEqual(t, Reject, f.AcceptTerm(morton))
}

func TestBoundingBoxFilterCellTest(t *testing.T) {
	f := NewBoundingBoxFilter(orb.Bound{Min: orb.Point{-10, -10}, Max: orb.Point{10, 10}})

	util.AssertEqual(t, spatial.Disjoint, f.CellTest(orb.Bound{Min: orb.Point{50, 50}, Max: orb.Point{60, 60}}))
	util.AssertEqual(t, spatial.Contains, f.CellTest(orb.Bound{Min: orb.Point{-5, -5}, Max: orb.Point{5, 5}}))
	util.AssertEqual(t, spatial.Within, f.CellTest(orb.Bound{Min: orb.Point{-20, -20}, Max: orb.Point{20, 20}}))
	util.AssertEqual(t, spatial.Intersects, f.CellTest(orb.Bound{Min: orb.Point{5, 5}, Max: orb.Point{20, 20}}))
}

func TestSplitAntimeridianNoSplitWhenNotCrossing(t *testing.T) {
	boxes := SplitAntimeridian(orb.Bound{Min: orb.Point{10, -10}, Max: orb.Point{20, 10}})
	util.AssertEqual(t, 1, len(boxes))
}

func TestSplitAntimeridianSplitsCrossingBox(t *testing.T) {
	// A query spanning from 170 east to -170 (== 190) east crosses the
	// dateline: min lon (170) > max lon (-170).
	boxes := SplitAntimeridian(orb.Bound{Min: orb.Point{170, -10}, Max: orb.Point{-170, 10}})
	util.AssertEqual(t, 2, len(boxes))

	util.AssertEqual(t, Accept, boxes[0].AcceptPoint(orb.Point{175, 0}))
	util.AssertEqual(t, Reject, boxes[0].AcceptPoint(orb.Point{-175, 0}))
	util.AssertEqual(t, Accept, boxes[1].AcceptPoint(orb.Point{-175, 0}))
	util.AssertEqual(t, Reject, boxes[1].AcceptPoint(orb.Point{175, 0}))
}
