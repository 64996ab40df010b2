package spatial

import (
	"testing"

	"github.com/paulmach/orb"

	"geocore/util"
)

func TestWorldCellLevelAndToken(t *testing.T) {
	tree, err := NewPackedQuadTree(8)
	util.AssertNil(t, err)

	world := tree.WorldCell()
	util.AssertEqual(t, 0, world.Level())
	util.AssertTrue(t, !world.IsLeaf())
	util.AssertEqual(t, []byte{0, 0, 0, 0, 0, 0, 0, 0x2}, world.TokenBytesWithLeaf())
}

func TestDescendIncreasesLevelByOne(t *testing.T) {
	tree, err := NewPackedQuadTree(8)
	util.AssertNil(t, err)

	cell := tree.GetCell(orb.Point{10, 20}, 5)
	util.AssertEqual(t, 5, cell.Level())
}

func TestSubCellsAreOneLevelDeeperAndContained(t *testing.T) {
	tree, err := NewPackedQuadTree(6)
	util.AssertNil(t, err)

	parent := tree.GetCell(orb.Point{10, 20}, 3)
	parentRect := parent.Rectangle()

	for _, child := range parent.SubCells() {
		util.AssertEqual(t, parent.Level()+1, child.Level())

		childRect := child.Rectangle()
		util.AssertTrue(t, childRect.Min.X() >= parentRect.Min.X())
		util.AssertTrue(t, childRect.Max.X() <= parentRect.Max.X())
		util.AssertTrue(t, childRect.Min.Y() >= parentRect.Min.Y())
		util.AssertTrue(t, childRect.Max.Y() <= parentRect.Max.Y())
	}
}

func TestGetCellRectangleContainsQueryPoint(t *testing.T) {
	tree, err := NewPackedQuadTree(10)
	util.AssertNil(t, err)

	p := orb.Point{151.2093, -33.8688} // Sydney
	for level := 1; level <= 10; level++ {
		cell := tree.GetCell(p, level)
		rect := cell.Rectangle()
		util.AssertTrue(t, rect.Min.X() <= p.X() && p.X() < rect.Max.X() || p.X() == rect.Max.X())
		util.AssertTrue(t, rect.Min.Y() <= p.Y() && p.Y() < rect.Max.Y() || p.Y() == rect.Max.Y())
	}
}

// TestWorldExhaustionCellCount walks every non-root cell of a max_levels=2
// tree via NextCell(descend=true), which performs a full depth-first walk:
// 4 level-1 cells, each with 4 level-2 children, for 20 cells total.
func TestWorldExhaustionCellCount(t *testing.T) {
	tree, err := NewPackedQuadTree(2)
	util.AssertNil(t, err)

	count := 0
	cur := tree.WorldCell()
	for {
		next, ok := tree.NextCell(cur, true)
		if !ok {
			break
		}
		count++
		cur = next
	}
	util.AssertEqual(t, 20, count)
}

func TestNextCellSiblingStepSkipsDescendDisabled(t *testing.T) {
	tree, err := NewPackedQuadTree(4)
	util.AssertNil(t, err)

	cell := tree.GetCell(orb.Point{-170, 80}, 1) // NW-most cell of the world
	sib, ok := tree.NextCell(cell, false)
	util.AssertTrue(t, ok)
	util.AssertEqual(t, 1, sib.Level())
	util.AssertTrue(t, cell.CompareNoLeaf(sib) < 0)
}

func TestLeafCellSkipsDescendEvenWhenRequested(t *testing.T) {
	tree, err := NewPackedQuadTree(4)
	util.AssertNil(t, err)

	cell := tree.GetCell(orb.Point{10, 10}, 2)
	cell.SetLeaf()
	util.AssertTrue(t, cell.IsLeaf())

	next, ok := tree.NextCell(cell, true)
	util.AssertTrue(t, ok)
	// A leaf never yields a child: the next cell must be a sibling or an
	// ascended cousin, never at a deeper level.
	util.AssertTrue(t, next.Level() <= cell.Level())
}

func TestCellForcedLeafAtMaxLevels(t *testing.T) {
	tree, err := NewPackedQuadTree(3)
	util.AssertNil(t, err)

	cell := tree.GetCell(orb.Point{10, 10}, 3)
	util.AssertTrue(t, cell.IsLeaf())
}

func TestCompareNoLeafIgnoresLeafBit(t *testing.T) {
	tree, err := NewPackedQuadTree(4)
	util.AssertNil(t, err)

	a := tree.GetCell(orb.Point{10, 10}, 2)
	b := tree.GetCell(orb.Point{10, 10}, 2)
	b.SetLeaf()

	util.AssertEqual(t, 0, a.CompareNoLeaf(b))
}

func TestReadCellRejectsOutOfRangeLevel(t *testing.T) {
	tree, err := NewPackedQuadTree(2)
	util.AssertNil(t, err)

	// A term whose sentinel bit implies level 5, deeper than this tree's
	// max_levels of 2.
	_, err = tree.ReadCell(uint64(1) << 11)
	util.AssertNotNil(t, err)
}

func TestNewPackedQuadTreeRejectsOutOfRangeMaxLevels(t *testing.T) {
	_, err := NewPackedQuadTree(0)
	util.AssertNotNil(t, err)

	_, err = NewPackedQuadTree(MaxLevelsPossible + 1)
	util.AssertNotNil(t, err)
}
