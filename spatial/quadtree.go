package spatial

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"geocore/geoerr"
)

// MaxLevelsPossible is the largest tree depth a term can address: at 2 bits
// of quadrant per level plus a sentinel and a leaf bit, 31 levels is the most
// that fits in 64 bits (1 + 2*31 + 1 = 64).
const MaxLevelsPossible = 31

// World is the fixed WGS84 plane every QuadTree decomposes. Longitude spans
// twice the range of latitude, so level_w is always level_h's predecessor by
// one halving.
var World = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// QuadTree holds the per-level cell metrics (width and height in degrees,
// halving from the world's own extents at level 0) that both the packed quad
// tree and its cells use to turn a token into a rectangle, or a point into a
// quadrant.
type QuadTree struct {
	maxLevels int
	levelW    []float64
	levelH    []float64
}

// NewQuadTree builds the per-level metric tables for a tree with the given
// maximum depth. maxLevels must be in [1, MaxLevelsPossible].
func NewQuadTree(maxLevels int) (*QuadTree, error) {
	if maxLevels < 1 || maxLevels > MaxLevelsPossible {
		return nil, errors.Wrapf(geoerr.ErrInvalidConfiguration, "quadtree max_levels %d out of range [1, %d]", maxLevels, MaxLevelsPossible)
	}

	levelW := make([]float64, maxLevels+1)
	levelH := make([]float64, maxLevels+1)
	levelW[0] = World.Max.Lon() - World.Min.Lon()
	levelH[0] = World.Max.Lat() - World.Min.Lat()
	for i := 1; i <= maxLevels; i++ {
		levelW[i] = levelW[i-1] / 2
		levelH[i] = levelH[i-1] / 2
	}

	return &QuadTree{maxLevels: maxLevels, levelW: levelW, levelH: levelH}, nil
}

// MaxLevels returns the tree's configured maximum depth.
func (t *QuadTree) MaxLevels() int { return t.maxLevels }

// LevelWidth returns the width, in degrees, of a cell at the given level.
func (t *QuadTree) LevelWidth(level int) float64 { return t.levelW[level] }

// LevelHeight returns the height, in degrees, of a cell at the given level.
func (t *QuadTree) LevelHeight(level int) float64 { return t.levelH[level] }

// quadrant identifies one of the four Z-order children of a cell. Bit values
// match the packed term encoding: 0=NW, 1=NE, 2=SW, 3=SE.
type quadrant byte

const (
	quadNW quadrant = 0
	quadNE quadrant = 1
	quadSW quadrant = 2
	quadSE quadrant = 3
)

// quadrantFor returns the quadrant of a cell centred at (cx, cy) that
// contains p, applying a half-open lower-left rule: a point exactly on the
// centre belongs to the east/north half, matching the cell-level convention
// that a cell owns its xmin/ymin edge but not its xmax/ymax edge.
func quadrantFor(p orb.Point, cx, cy float64) quadrant {
	east := p.X() >= cx
	north := p.Y() >= cy
	switch {
	case !east && north:
		return quadNW
	case east && north:
		return quadNE
	case !east && !north:
		return quadSW
	default:
		return quadSE
	}
}

// CellFor walks the tree from the world cell down to the given level,
// choosing at each step the quadrant of the current cell that contains p,
// and returns the resulting rectangle. It does not consult any shape
// relation oracle; it is pure point-in-cell geometry, used by callers that
// need a deterministic cell for an exact point rather than a shape cover.
func (t *QuadTree) CellFor(p orb.Point, level int) orb.Bound {
	xmin, ymin := World.Min.X(), World.Min.Y()
	width, height := t.levelW[0], t.levelH[0]

	for l := 1; l <= level; l++ {
		cx, cy := xmin+width/2, ymin+height/2
		switch quadrantFor(p, cx, cy) {
		case quadNW:
			ymin += t.levelH[l]
		case quadNE:
			xmin += t.levelW[l]
			ymin += t.levelH[l]
		case quadSW:
			// xmin, ymin unchanged.
		case quadSE:
			xmin += t.levelW[l]
		}
		width, height = t.levelW[l], t.levelH[l]
	}

	return orb.Bound{Min: orb.Point{xmin, ymin}, Max: orb.Point{xmin + width, ymin + height}}
}
