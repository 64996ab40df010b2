package spatial

import (
	"bytes"
	"encoding/binary"
	"math/bits"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"geocore/geoerr"
)

// worldTerm is the packed term of the level-0 cell: a sentinel bit with no
// quadrant pairs and no leaf bit set.
const worldTerm uint64 = 0x2

// PackedQuadTree is a packed quad-prefix tree: every cell's address is a
// single uint64 term (a leading sentinel bit, two bits per level of
// quadrant, and a trailing leaf flag), which doubles as a lexicographically
// sortable index term once serialised big-endian.
type PackedQuadTree struct {
	*QuadTree
}

// NewPackedQuadTree builds a packed quad-prefix tree with the given maximum
// depth.
func NewPackedQuadTree(maxLevels int) (*PackedQuadTree, error) {
	qt, err := NewQuadTree(maxLevels)
	if err != nil {
		return nil, err
	}
	return &PackedQuadTree{QuadTree: qt}, nil
}

// WorldCell returns the tree's level-0 cell, covering the whole plane.
func (t *PackedQuadTree) WorldCell() Cell {
	return &packedQuadCell{tree: t, term: worldTerm}
}

// GetCell walks the tree from the world cell down to level, choosing at
// each step the quadrant that contains p, and returns the resulting cell.
// It is the packed-cell equivalent of QuadTree.CellFor.
func (t *PackedQuadTree) GetCell(p orb.Point, level int) Cell {
	term := worldTerm
	xmin, ymin := World.Min.X(), World.Min.Y()
	width, height := t.levelW[0], t.levelH[0]

	for l := 1; l <= level; l++ {
		cx, cy := xmin+width/2, ymin+height/2
		q := quadrantFor(p, cx, cy)
		term = descend(term, q)
		switch q {
		case quadNW:
			ymin += t.levelH[l]
		case quadNE:
			xmin += t.levelW[l]
			ymin += t.levelH[l]
		case quadSW:
		case quadSE:
			xmin += t.levelW[l]
		}
		width, height = t.levelW[l], t.levelH[l]
	}

	return &packedQuadCell{tree: t, term: term}
}

// ReadCell builds a Cell from a term previously produced by this tree (for
// example, one read back from storage). It returns geoerr.ErrInvariantViolation
// if the term's level falls outside the tree's configured range.
func (t *PackedQuadTree) ReadCell(term uint64) (Cell, error) {
	level := levelOf(term)
	if level < 0 || level > t.maxLevels {
		return nil, errors.Wrapf(geoerr.ErrInvariantViolation, "term %#x has level %d outside tree range [0, %d]", term, level, t.maxLevels)
	}
	return &packedQuadCell{tree: t, term: term}, nil
}

// descend appends a quadrant's 2 bits to a non-leaf term, moving one level
// deeper.
func descend(term uint64, q quadrant) uint64 {
	return (term << 2) | (uint64(q) << 1)
}

// sibling advances a term to the next cell at the same level under the same
// parent, in Z-order: NW->NE->SW->SE.
func sibling(term uint64) uint64 {
	return term + 0x2
}

// levelOf returns the tree depth encoded by term's sentinel bit position:
// the world cell (term==0x2) is level 0.
func levelOf(term uint64) int {
	if term == 0 {
		return -1
	}
	significant := 64 - bits.LeadingZeros64(term)
	return (significant >> 1) - 1
}

// isEndOfLevel reports whether term is the last (SE-most) cell of its level,
// i.e. every quadrant pair is 0b11 (SE), whatever its leaf bit.
func isEndOfLevel(term uint64, level int) bool {
	term &^= 1
	if term == worldTerm {
		return false
	}
	return term == (uint64(1)<<uint((level<<1)+2))-2
}

// nextCell computes the next cell in the tree's depth-first pre-order
// traversal (children in NW, NE, SW, SE order). This is not the numeric order
// of the terms: a parent's next sibling has a smaller term than the parent's
// children, so an emitted sequence needs sorting before it is ascending (as
// store.TermWriter does). If descend is true
// and term is not a leaf and not already at maxLevels, it returns term's
// first child; otherwise it returns term's next sibling, ascending through
// parents (stripping their now-exhausted trailing quadrant pairs) as needed.
// The second return value is false once the traversal is exhausted.
func nextCell(term uint64, level, maxLevels int, descendFlag bool) (uint64, bool) {
	isLeaf := term&1 == 1
	if ((!descendFlag || isLeaf) && isEndOfLevel(term, level)) || isEndOfLevel(term, maxLevels) {
		return 0, false
	}

	var newTerm uint64
	if (descendFlag && !isLeaf && level != maxLevels) || level == 0 {
		newTerm = term << 2
	} else {
		base := term
		if isLeaf {
			base = term - 1
		}
		newTerm = base + 0x2

		if term&0x6 == 0x6 {
			tz := bits.TrailingZeros64(newTerm)
			shiftAmt := 2
			if tz%2 != 0 {
				shiftAmt = 1
			}
			newTerm >>= uint(tz - shiftAmt)
		}
	}

	return newTerm, true
}

// packedQuadCell is the concrete Cell implementation backing PackedQuadTree.
type packedQuadCell struct {
	tree     *PackedQuadTree
	term     uint64
	relation Relation
}

func (c *packedQuadCell) termNoLeaf() uint64 {
	return c.term &^ 1
}

func (c *packedQuadCell) TokenBytesWithLeaf() []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], c.term)
	return buf[:]
}

func (c *packedQuadCell) TokenBytesNoLeaf() []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], c.termNoLeaf())
	return buf[:]
}

func (c *packedQuadCell) Level() int {
	return levelOf(c.termNoLeaf())
}

func (c *packedQuadCell) IsLeaf() bool {
	return c.term&1 == 1 || c.Level() >= c.tree.maxLevels
}

func (c *packedQuadCell) SetLeaf() {
	c.term |= 1
}

func (c *packedQuadCell) ShapeRelation() Relation {
	return c.relation
}

func (c *packedQuadCell) SetShapeRelation(r Relation) {
	c.relation = r
}

func (c *packedQuadCell) Rectangle() orb.Bound {
	level := c.Level()
	xmin, ymin := World.Min.X(), World.Min.Y()

	for i, l := (level<<1)-1, 1; i > 0; i, l = i-2, l+1 {
		switch (c.term >> uint(i)) & 0x3 {
		case uint64(quadNW):
			ymin += c.tree.levelH[l]
		case uint64(quadNE):
			xmin += c.tree.levelW[l]
			ymin += c.tree.levelH[l]
		case uint64(quadSW):
		case uint64(quadSE):
			xmin += c.tree.levelW[l]
		}
	}

	width, height := c.tree.levelW[level], c.tree.levelH[level]
	return orb.Bound{Min: orb.Point{xmin, ymin}, Max: orb.Point{xmin + width, ymin + height}}
}

func (c *packedQuadCell) SubCells() [4]Cell {
	base := descend(c.termNoLeaf(), quadNW)
	var children [4]Cell
	for i := 0; i < 4; i++ {
		children[i] = &packedQuadCell{tree: c.tree, term: base + uint64(i)*0x2}
	}
	return children
}

func (c *packedQuadCell) CompareNoLeaf(other Cell) int {
	a := c.termNoLeaf()
	o, ok := other.(*packedQuadCell)
	var b uint64
	if ok {
		b = o.termNoLeaf()
	} else {
		// Fall back to comparing serialised tokens for foreign Cell
		// implementations.
		return bytes.Compare(c.TokenBytesNoLeaf(), other.TokenBytesNoLeaf())
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// NextCell returns the next cell after c in this tree's depth-first
// pre-order traversal (see nextCell; not numeric term order). descendFlag requests descending into c's first child when
// possible; when false (or when c is a leaf or at the tree's maximum
// level), it steps to the next sibling, ascending through parents as
// needed. The second return value is false once traversal is exhausted.
func (t *PackedQuadTree) NextCell(c Cell, descendFlag bool) (Cell, bool) {
	pc, ok := c.(*packedQuadCell)
	if !ok {
		return nil, false
	}
	next, more := nextCell(pc.term, pc.Level(), t.maxLevels, descendFlag)
	if !more {
		return nil, false
	}
	return &packedQuadCell{tree: t, term: next}, true
}
