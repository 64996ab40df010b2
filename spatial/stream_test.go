package spatial

import (
	"testing"

	"github.com/paulmach/orb"

	"geocore/geoerr"
	"geocore/util"
)

func TestStreamingShapeIteratorCoversBoundingBox(t *testing.T) {
	tree, err := NewPackedQuadTree(8)
	util.AssertNil(t, err)

	query := orb.Bound{Min: orb.Point{-10, -10}, Max: orb.Point{10, 10}}
	oracle := NewBoundOracle(query)

	it := NewStreamingShapeIterator(tree, oracle, 6)

	var cells []Cell
	for it.HasNext() {
		c, err := it.Next()
		util.AssertNil(t, err)
		cells = append(cells, c)
	}

	_, err = it.Next()
	util.AssertTrue(t, err == geoerr.ErrEndOfIteration)

	util.AssertTrue(t, len(cells) > 0)

	// Every emitted cell must at least intersect the query box, and none
	// may be marked Disjoint. Within/detail-level cells are forced leaves;
	// Contains/Intersects cells below the detail level are published as-is
	// and refined further on a later advance, so they need not be leaves.
	for _, c := range cells {
		util.AssertTrue(t, c.ShapeRelation() != Disjoint)
	}
}

func TestStreamingShapeIteratorSkipsDisjointBranches(t *testing.T) {
	tree, err := NewPackedQuadTree(6)
	util.AssertNil(t, err)

	// A tiny box entirely within the SE quadrant of the world: the NW, NE
	// and SW level-1 branches must never be descended into or emitted.
	query := orb.Bound{Min: orb.Point{170, -80}, Max: orb.Point{171, -79}}
	oracle := NewBoundOracle(query)

	it := NewStreamingShapeIterator(tree, oracle, 6)
	for it.HasNext() {
		c, err := it.Next()
		util.AssertNil(t, err)
		rect := c.Rectangle()
		util.AssertTrue(t, rect.Max.X() > 90) // must be in the east half
		util.AssertTrue(t, rect.Max.Y() <= 0)  // must be in the south half
	}
}

func TestStreamingShapeIteratorWholeWorldYieldsFourLevelOneLeaves(t *testing.T) {
	tree, err := NewPackedQuadTree(8)
	util.AssertNil(t, err)

	oracle := NewBoundOracle(World)
	it := NewStreamingShapeIterator(tree, oracle, 8)

	// The iterator's cursor starts at the level-1 NW cell (WorldCell().NextCell(true)),
	// so the world cell itself is never a candidate. A world-equal query
	// bound contains each level-1 quadrant, so all four are emitted as
	// Within leaves and nothing is ever descended into further.
	var cells []Cell
	for it.HasNext() {
		c, err := it.Next()
		util.AssertNil(t, err)
		cells = append(cells, c)
	}

	util.AssertEqual(t, 4, len(cells))
	for _, c := range cells {
		util.AssertEqual(t, 1, c.Level())
		util.AssertTrue(t, c.IsLeaf())
		util.AssertTrue(t, c.ShapeRelation() == Within)
	}

	_, err = it.Next()
	util.AssertTrue(t, err == geoerr.ErrEndOfIteration)
}
