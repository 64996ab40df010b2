// Package server exposes geocore's indexing and query operations over
// HTTP: a gorilla/mux router, sigolo request logging, and plain-text error
// bodies, which is enough for the two narrow query endpoints below.
package server

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"geocore/spatial"
	"geocore/store"
	"geocore/termenum"
)

// Server holds the single PackedQuadTree an instance indexes points and
// polygon rings into, and the path of the flat term file store.TermWriter
// and store.TermReader share.
type Server struct {
	tree        *spatial.PackedQuadTree
	termPath    string
	detailLevel int

	mu sync.Mutex
}

// New builds a Server backed by tree, persisting terms at termPath.
// detailLevel bounds how deep StreamingShapeIterator descends before
// forcing a leaf; 0 means descend to the tree's full depth.
func New(tree *spatial.PackedQuadTree, termPath string, detailLevel int) *Server {
	return &Server{tree: tree, termPath: termPath, detailLevel: detailLevel}
}

// Router builds the mux.Router serving /index and /query/*.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/index", s.handleIndex).Methods(http.MethodPost)
	r.HandleFunc("/query/bbox", s.handleQueryBBox).Methods(http.MethodGet)
	r.HandleFunc("/query/distance", s.handleQueryDistance).Methods(http.MethodGet)
	return r
}

// ListenAndServe starts the HTTP server on addr: log then block in
// http.ListenAndServe.
func (s *Server) ListenAndServe(addr string) error {
	sigolo.Infof("starting geocore server on %s", addr)
	return http.ListenAndServe(addr, s.Router())
}

// handleIndex reads a newline-delimited body of "lon,lat,lon,lat,..." ring
// coordinates -- a test-fixture format, not a GeoJSON/WKT parser -- turns
// each line into an orb.Point or orb.Polygon, walks it with a
// StreamingShapeIterator, and appends the term of every cell the iterator
// emits (its leaf cells and the intersecting cells above them) to the term
// store.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writer, err := store.NewTermWriter(s.termPath)
	if err != nil {
		sigolo.Errorf("unable to open term store for indexing: %+v", err)
		http.Error(w, "unable to open term store", http.StatusInternalServerError)
		return
	}

	indexed := 0
	scanner := bufio.NewScanner(r.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		geom, err := parseRingLine(line)
		if err != nil {
			sigolo.Errorf("unable to parse index line %q: %+v", line, err)
			http.Error(w, errors.Wrapf(err, "unable to parse line %q", line).Error(), http.StatusBadRequest)
			return
		}

		oracle := spatial.NewBoundOracle(geom.Bound())
		it := spatial.NewStreamingShapeIterator(s.tree, oracle, s.detailLevel)
		for it.HasNext() {
			cell, err := it.Next()
			if err != nil {
				sigolo.Errorf("unable to advance shape iterator: %+v", err)
				http.Error(w, "unable to advance shape iterator", http.StatusInternalServerError)
				return
			}
			writer.Write(binary.BigEndian.Uint64(cell.TokenBytesWithLeaf()))
			indexed++
		}
	}
	if err := scanner.Err(); err != nil {
		sigolo.Errorf("unable to read index request body: %+v", err)
		http.Error(w, "unable to read request body", http.StatusInternalServerError)
		return
	}

	if err := writer.Close(); err != nil {
		sigolo.Errorf("unable to flush term store: %+v", err)
		http.Error(w, "unable to flush term store", http.StatusInternalServerError)
		return
	}

	sigolo.Debugf("indexed %d cells into %s", indexed, s.termPath)
	writeJSON(w, map[string]int{"indexed": indexed})
}

// handleQueryBBox answers GET /query/bbox?minLon=&minLat=&maxLon=&maxLat=
// by scanning every stored term, decoding each matching cell's center
// point, and keeping the ones a BoundingBoxFilter accepts.
func (s *Server) handleQueryBBox(w http.ResponseWriter, r *http.Request) {
	minLon, err1 := floatParam(r, "minLon")
	minLat, err2 := floatParam(r, "minLat")
	maxLon, err3 := floatParam(r, "maxLon")
	maxLat, err4 := floatParam(r, "maxLat")
	if err := firstErr(err1, err2, err3, err4); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	bbox := orb.Bound{Min: orb.Point{minLon, minLat}, Max: orb.Point{maxLon, maxLat}}
	points, err := s.scanPoints(func(p orb.Point) bool {
		for _, f := range termenum.SplitAntimeridian(bbox) {
			if f.AcceptPoint(p) == termenum.Accept {
				return true
			}
		}
		return false
	})
	if err != nil {
		sigolo.Errorf("unable to query bbox: %+v", err)
		http.Error(w, "unable to query term store", http.StatusInternalServerError)
		return
	}

	writeJSON(w, points)
}

// handleQueryDistance answers GET /query/distance?lon=&lat=&radiusMeters=
// the same way, via a DistanceFilter's haversine AcceptPoint. Every stored
// term is scanned, so the filter's antimeridian-split bounding boxes are not
// consulted; haversine distance is unaffected by the +/-180 seam.
func (s *Server) handleQueryDistance(w http.ResponseWriter, r *http.Request) {
	lon, err1 := floatParam(r, "lon")
	lat, err2 := floatParam(r, "lat")
	radius, err3 := floatParam(r, "radiusMeters")
	if err := firstErr(err1, err2, err3); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filter := termenum.NewDistanceFilter(orb.Point{lon, lat}, radius)
	points, err := s.scanPoints(func(p orb.Point) bool {
		return filter.AcceptPoint(p) == termenum.Accept
	})
	if err != nil {
		sigolo.Errorf("unable to query distance: %+v", err)
		http.Error(w, "unable to query term store", http.StatusInternalServerError)
		return
	}

	writeJSON(w, points)
}

// scanPoints opens the term store, decodes every stored term back into its
// cell's center point via the server's tree, and returns the points keep
// accepts.
func (s *Server) scanPoints(keep func(orb.Point) bool) ([]orb.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reader, err := store.OpenTermReader(s.termPath)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open term store")
	}
	defer reader.Close()

	it, err := reader.Seek(0)
	if err != nil {
		return nil, errors.Wrap(err, "unable to seek term store")
	}

	var points []orb.Point
	for {
		term, ok, err := it.Next()
		if err != nil {
			return nil, errors.Wrap(err, "unable to read term")
		}
		if !ok {
			break
		}

		cell, err := s.tree.ReadCell(term)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to decode term %#x", term)
		}

		center := cell.Rectangle().Center()
		if keep(center) {
			points = append(points, center)
		}
	}
	return points, nil
}

// parseRingLine turns a "lon,lat,lon,lat,..." line into an orb.Point (one
// pair) or an orb.Polygon (three or more pairs, closing the ring if the
// caller didn't).
func parseRingLine(line string) (orb.Geometry, error) {
	parts := strings.Split(line, ",")
	if len(parts)%2 != 0 {
		return nil, errors.Errorf("odd number of coordinate values (%d)", len(parts))
	}

	coords := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid coordinate value %q", p)
		}
		coords[i] = v
	}

	numPoints := len(coords) / 2
	if numPoints == 1 {
		return orb.Point{coords[0], coords[1]}, nil
	}
	if numPoints < 3 {
		return nil, errors.Errorf("a ring needs at least 3 points, got %d", numPoints)
	}

	ring := make(orb.Ring, 0, numPoints+1)
	for i := 0; i < numPoints; i++ {
		ring = append(ring, orb.Point{coords[i*2], coords[i*2+1]})
	}
	if !ring[0].Equal(ring[len(ring)-1]) {
		ring = append(ring, ring[0])
	}

	return orb.Polygon{ring}, nil
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errors.Errorf("missing query parameter %q", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid query parameter %q=%q", name, raw)
	}
	return v, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		sigolo.Errorf("unable to write JSON response: %+v", err)
	}
}
