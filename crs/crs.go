// Package crs defines the narrow contract a coordinate reference system
// handler must satisfy to sit in front of geocore. The core itself only
// ever operates on WGS84 lon/lat degrees; a CrsHandler is where a caller
// with differently-projected input would reproject before handing
// geometry to the ingestion or query paths. Reprojection to an arbitrary
// CRS is explicitly out of scope for the core -- this package only defines
// the pluggable seam, not an implementation of any particular projection.
package crs

// Handler reprojects a coordinate pair under the named transform. The
// core never calls Reproject itself; it is consumed by the external
// ingestion/query pipeline that sits in front of a geocore tree.
type Handler interface {
	// Reproject converts (x, y) from one coordinate reference system to
	// another, as identified by transform (an opaque, handler-specific
	// identifier -- e.g. an EPSG code or a PROJ string).
	Reproject(x, y float64, transform string) (float64, float64, error)
}

// Identity is the only Handler geocore ships: a pass-through for callers
// whose input is already WGS84. It ignores transform and returns (x, y)
// unchanged; reprojection of other reference systems is out of scope.
type Identity struct{}

func (Identity) Reproject(x, y float64, transform string) (float64, float64, error) {
	return x, y, nil
}
