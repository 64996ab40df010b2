package spatial

import "geocore/geoerr"

// StreamingShapeIterator lazily computes the minimal set of cells covering
// a query shape. It walks the tree cell-by-cell via PackedQuadTree.NextCell
// instead of recursing over subcells, using a two-cursor (current/next)
// pull protocol so a caller can consume the cover one cell at a time
// without the whole traversal living on a call stack.
//
// A cell is emitted whenever its relation to the shape is not Disjoint:
// Within (or a cell forced to a leaf at the detail level) is emitted as a
// terminal leaf, while Contains/Intersects cells below the detail level
// are emitted too and then separately refined by descending into their
// four children on the following advance. Disjoint branches, and their
// descendants, are never visited.
type StreamingShapeIterator struct {
	tree     *PackedQuadTree
	oracle   ShapeRelationOracle
	maxLevel int

	current Cell
	next    Cell
}

// NewStreamingShapeIterator begins a cover traversal of tree for the shape
// described by oracle. detailLevel caps how deep the cover refines; 0 (or
// any value >= the tree's own maximum) uses the tree's full depth.
func NewStreamingShapeIterator(tree *PackedQuadTree, oracle ShapeRelationOracle, detailLevel int) *StreamingShapeIterator {
	maxLevel := tree.MaxLevels()
	if detailLevel > 0 && detailLevel < maxLevel {
		maxLevel = detailLevel
	}

	it := &StreamingShapeIterator{tree: tree, oracle: oracle, maxLevel: maxLevel}
	if start, ok := tree.NextCell(tree.WorldCell(), true); ok {
		it.current = start
	}
	it.advance()
	return it
}

// HasNext reports whether a further call to Next will return a cell rather
// than geoerr.ErrEndOfIteration.
func (it *StreamingShapeIterator) HasNext() bool {
	return it.next != nil
}

// Next returns the next cell in the cover. Once the cover is exhausted it
// returns geoerr.ErrEndOfIteration.
func (it *StreamingShapeIterator) Next() (Cell, error) {
	if it.next == nil {
		return nil, geoerr.ErrEndOfIteration
	}
	result := it.next
	it.advance()
	return result, nil
}

// advance walks forward from it.current, testing each cell against the
// oracle, until it either finds the next cell belonging in the cover
// (stored in it.next) or exhausts the traversal (it.next set to nil).
func (it *StreamingShapeIterator) advance() {
	for it.current != nil {
		rel := it.oracle.Relate(it.current.Rectangle())

		switch {
		case rel == Disjoint:
			it.stepPast(false)

		case rel == Within || it.current.Level() >= it.maxLevel:
			it.current.SetShapeRelation(rel)
			it.current.SetLeaf()
			found := it.current
			it.stepPast(false)
			it.next = found
			return

		default: // Contains or Intersects below the detail level: publish
			// the cell as-is, then refine into its children on the next
			// advance.
			it.current.SetShapeRelation(rel)
			found := it.current
			it.stepPast(true)
			it.next = found
			return
		}
	}
	it.next = nil
}

// stepPast advances it.current to the next cell in the tree's
// lexicographic traversal order, descending into the current cell's
// children first if descend is true.
func (it *StreamingShapeIterator) stepPast(descend bool) {
	next, ok := it.tree.NextCell(it.current, descend)
	if !ok {
		it.current = nil
		return
	}
	it.current = next
}
