package termenum

import (
	"math"

	"github.com/paulmach/orb"

	"geocore/bitcodec"
	"geocore/spatial"
)

// earthRadiusMeters is the mean Earth radius used for haversine distance.
// The degree-to-meter conversions (metersPerDegreeLat below and geohash's
// LevelsForPrecision) use the equatorial 111,320 m/degree instead, about
// 0.1% more than the 111,195 m/degree this radius implies.
const earthRadiusMeters = 6371008.7714

const metersPerDegreeLat = 111320.0

// DistanceFilter accepts Morton-coded point terms within radiusMeters of a
// centre point. It mirrors the two-stage approach of a bounding-box query:
// a cheap per-cell circle test classifies whole candidate rectangles, and
// a haversine distance check refines individual points a cell test could
// not fully resolve.
type DistanceFilter struct {
	center       orb.Point
	radiusMeters float64
	boxes        []*BoundingBoxFilter
}

// NewDistanceFilter returns a filter for all points within radiusMeters of
// centre. Its enclosing bounding box is computed from a small-angle degree
// approximation at centre's latitude (tightening, not loosening, the
// envelope relative to the exact circle is unnecessary here since every
// candidate is still refined by AcceptTerm); the box is split across the
// antimeridian if needed.
func NewDistanceFilter(center orb.Point, radiusMeters float64) *DistanceFilter {
	latDeg := radiusMeters / metersPerDegreeLat

	cos := math.Cos(center.Y() * math.Pi / 180)
	const minCos = 0.01 // guards against the pole, where a degree of lon spans ~0m
	if cos < minCos {
		cos = minCos
	}
	lonDeg := radiusMeters / (metersPerDegreeLat * cos)
	if lonDeg > 180 {
		lonDeg = 180
	}

	bbox := orb.Bound{
		Min: orb.Point{center.X() - lonDeg, math.Max(center.Y()-latDeg, -90)},
		Max: orb.Point{center.X() + lonDeg, math.Min(center.Y()+latDeg, 90)},
	}
	// Normalise longitude into [-180, 180] before detecting an antimeridian
	// crossing, mirroring GeoUtils.normalizeLon in the distance query this
	// filter is grounded on.
	bbox.Min[0] = normalizeLon(bbox.Min.X())
	bbox.Max[0] = normalizeLon(bbox.Max.X())

	return &DistanceFilter{
		center:       center,
		radiusMeters: radiusMeters,
		boxes:        SplitAntimeridian(bbox),
	}
}

func normalizeLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}

// BoundingBoxes returns the filter's enclosing bounding box(es) (one, or
// two if the query circle's envelope crosses the antimeridian) for seeding
// a range scan before any per-cell distance test runs.
func (f *DistanceFilter) BoundingBoxes() []*BoundingBoxFilter {
	return f.boxes
}

// CellTest classifies rect against the query circle: Contains if every
// point in rect lies within the radius, Disjoint if the closest point in
// rect to the centre is beyond the radius, or Intersects otherwise.
func (f *DistanceFilter) CellTest(rect orb.Bound) spatial.Relation {
	if f.rectWithinCircle(rect) {
		return spatial.Contains
	}
	if !f.rectCrossesCircle(rect) {
		return spatial.Disjoint
	}
	return spatial.Intersects
}

func (f *DistanceFilter) rectWithinCircle(rect orb.Bound) bool {
	corners := [4]orb.Point{
		{rect.Min.X(), rect.Min.Y()}, {rect.Max.X(), rect.Min.Y()},
		{rect.Min.X(), rect.Max.Y()}, {rect.Max.X(), rect.Max.Y()},
	}
	for _, c := range corners {
		if f.haversineTo(c) > f.radiusMeters {
			return false
		}
	}
	return true
}

func (f *DistanceFilter) rectCrossesCircle(rect orb.Bound) bool {
	closest := orb.Point{
		clamp(f.center.X(), rect.Min.X(), rect.Max.X()),
		clamp(f.center.Y(), rect.Min.Y(), rect.Max.Y()),
	}
	return f.haversineTo(closest) <= f.radiusMeters
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (f *DistanceFilter) haversineTo(p orb.Point) float64 {
	return haversineMeters(f.center.Y(), f.center.X(), p.Y(), p.X())
}

// haversineMeters returns the great-circle distance, in meters, between
// two lat/lon points.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := math.Pi / 180.0
	dLat := (lat2 - lat1) * toRad
	dLon := (lon2 - lon1) * toRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*toRad)*math.Cos(lat2*toRad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// AcceptPoint applies the filter directly to a decoded coordinate.
func (f *DistanceFilter) AcceptPoint(p orb.Point) AcceptStatus {
	if f.haversineTo(p) <= f.radiusMeters {
		return Accept
	}
	return Reject
}

// AcceptTerm decodes a Morton-coded point term and applies AcceptPoint.
func (f *DistanceFilter) AcceptTerm(morton uint64) AcceptStatus {
	return f.AcceptPoint(orb.Point{bitcodec.MortonDecodeLon(morton), bitcodec.MortonDecodeLat(morton)})
}
