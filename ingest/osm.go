// Package ingest adapts OSM source data into the orb.Geometry values
// geocore's tree builders consume. It does not interpret tags or build an
// index itself; it only turns a stream of scanned OSM objects into
// geometry ready for a spatial.ShapeRelationOracle.
package ingest

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

// Feature pairs a decoded geometry with the OSM object it came from, ready
// to be handed to a tree builder alongside whatever term encodes its cell.
type Feature struct {
	ID       osm.ObjectID
	Geometry orb.Geometry
}

// Reader scans an .osm or .pbf file and yields one Feature per node or way
// it contains. Relations are out of scope: geocore indexes point and line
// geometry, not the compound shapes relations describe.
type Reader struct {
	file    io.ReadCloser
	scanner osm.Scanner
}

// Open picks an XML or PBF scanner for path based on its suffix.
func Open(ctx context.Context, path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open ingest source %s", path)
	}

	var scanner osm.Scanner
	switch {
	case strings.HasSuffix(path, ".osm"):
		scanner = osmxml.New(ctx, f)
	case strings.HasSuffix(path, ".pbf"):
		scanner = osmpbf.New(ctx, f, 1)
	default:
		f.Close()
		return nil, errors.Errorf("ingest source %s must be an .osm or .pbf file", path)
	}

	return &Reader{file: f, scanner: scanner}, nil
}

// Close releases the scanner and the underlying file handle.
func (r *Reader) Close() error {
	scanErr := r.scanner.Close()
	fileErr := r.file.Close()
	if scanErr != nil {
		return errors.Wrap(scanErr, "unable to close ingest scanner")
	}
	if fileErr != nil {
		return errors.Wrap(fileErr, "unable to close ingest source file")
	}
	return nil
}

// Next scans forward to the next node or way and returns it as a Feature.
// It skips relations and any way whose nodes carry no coordinates (i.e.
// ways from a source that wasn't annotated with node locations). It
// returns io.EOF once the source is exhausted.
func (r *Reader) Next() (*Feature, error) {
	for r.scanner.Scan() {
		switch obj := r.scanner.Object().(type) {
		case *osm.Node:
			return &Feature{
				ID:       obj.ObjectID(),
				Geometry: orb.Point{obj.Lon, obj.Lat},
			}, nil
		case *osm.Way:
			ls := obj.LineString()
			if len(ls) == 0 {
				sigolo.Tracef("skipping way %d with no annotated node coordinates", obj.ID)
				continue
			}
			return &Feature{
				ID:       obj.ObjectID(),
				Geometry: ls,
			}, nil
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "unable to scan ingest source")
	}
	return nil, io.EOF
}

// All drains the Reader, returning every Feature it produces.
func (r *Reader) All() ([]*Feature, error) {
	var features []*Feature
	for {
		f, err := r.Next()
		if err == io.EOF {
			return features, nil
		}
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
}
