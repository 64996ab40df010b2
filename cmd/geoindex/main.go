package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"

	"geocore/config"
	"geocore/ingest"
	"geocore/server"
	"geocore/spatial"
	"geocore/store"
	"geocore/termenum"
)

const version = "v0.1.0"

var cli struct {
	Logging    string `help:"Logging verbosity." enum:"info,debug,trace" short:"l" default:"info"`
	TreeLevels int    `help:"Packed quad tree depth." default:"24"`
	TermFile   string `help:"Path to the flat term store." default:"geoindex-terms.bin"`

	Version VersionFlag `help:"Print version information and quit" name:"version" short:"v"`

	Index struct {
		Input string `help:"OSM .osm or .pbf source file." placeholder:"<input-file>" arg:"" type:"existingfile"`
	} `cmd:"" help:"Builds a term file from an OSM source."`

	Query struct {
		Bbox struct {
			MinLon float64 `arg:""`
			MinLat float64 `arg:""`
			MaxLon float64 `arg:""`
			MaxLat float64 `arg:""`
		} `cmd:"" help:"Prints every indexed point inside the given bounding box."`
		Distance struct {
			Lon          float64 `arg:""`
			Lat          float64 `arg:""`
			RadiusMeters float64 `arg:""`
		} `cmd:"" help:"Prints every indexed point within radiusMeters of lon,lat."`
	} `cmd:"" help:"Queries the term file."`

	Serve struct {
		Addr string `help:"Address to listen on." default:":8080"`
	} `cmd:"" help:"Starts the HTTP query surface."`
}

type VersionFlag string

func (v VersionFlag) Decode(ctx *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                         { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

func main() {
	ctx := kong.Parse(
		&cli,
		kong.Name("geoindex"),
		kong.Description("Packed quad tree and geohash spatial indexing."),
		kong.Vars{"version": version},
	)

	switch strings.ToLower(cli.Logging) {
	case "debug":
		sigolo.SetDefaultLogLevel(sigolo.LOG_DEBUG)
	case "trace":
		sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)
	case "info":
		sigolo.SetDefaultLogLevel(sigolo.LOG_INFO)
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
	default:
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
		sigolo.Fatalf("unknown logging level %q", cli.Logging)
	}

	opts := &config.Options{Tree: config.TreeQuadtree, Strategy: config.StrategyStreaming, TreeLevels: cli.TreeLevels}
	sigolo.FatalCheck(opts.Validate())

	tree, err := spatial.NewPackedQuadTree(opts.TreeLevels)
	sigolo.FatalCheck(err)

	switch ctx.Command() {
	case "index <input-file>":
		runIndex(tree)
	case "query bbox <min-lon> <min-lat> <max-lon> <max-lat>":
		runQueryBbox(tree)
	case "query distance <lon> <lat> <radius-meters>":
		runQueryDistance(tree)
	case "serve":
		s := server.New(tree, cli.TermFile, 0)
		sigolo.FatalCheck(s.ListenAndServe(cli.Serve.Addr))
	default:
		sigolo.Errorf("unknown command %q", ctx.Command())
	}
}

// runIndex scans an OSM source file and appends to the term store the term
// of every cell the streaming iterator emits for its geometries' bounds
// (leaf cells and the intersecting cells above them).
func runIndex(tree *spatial.PackedQuadTree) {
	reader, err := ingest.Open(context.Background(), cli.Index.Input)
	sigolo.FatalCheck(err)
	defer reader.Close()

	writer, err := store.NewTermWriter(cli.TermFile)
	sigolo.FatalCheck(err)

	indexed := 0
	for {
		feature, err := reader.Next()
		if err == io.EOF {
			break
		}
		sigolo.FatalCheck(err)

		oracle := spatial.NewBoundOracle(feature.Geometry.Bound())
		it := spatial.NewStreamingShapeIterator(tree, oracle, 0)
		for it.HasNext() {
			cell, err := it.Next()
			sigolo.FatalCheck(err)
			writer.Write(binary.BigEndian.Uint64(cell.TokenBytesWithLeaf()))
			indexed++
		}
	}

	sigolo.FatalCheck(writer.Close())
	sigolo.Infof("indexed %d cells into %s", indexed, cli.TermFile)
}

func runQueryBbox(tree *spatial.PackedQuadTree) {
	b := cli.Query.Bbox
	bbox := orb.Bound{Min: orb.Point{b.MinLon, b.MinLat}, Max: orb.Point{b.MaxLon, b.MaxLat}}
	filters := termenum.SplitAntimeridian(bbox)

	scanAndPrint(tree, func(p orb.Point) bool {
		for _, f := range filters {
			if f.AcceptPoint(p) == termenum.Accept {
				return true
			}
		}
		return false
	})
}

func runQueryDistance(tree *spatial.PackedQuadTree) {
	d := cli.Query.Distance
	filter := termenum.NewDistanceFilter(orb.Point{d.Lon, d.Lat}, d.RadiusMeters)
	scanAndPrint(tree, func(p orb.Point) bool { return filter.AcceptPoint(p) == termenum.Accept })
}

// scanAndPrint walks every stored term, decodes its cell's center point
// through tree, and prints the ones keep accepts as "lon,lat" lines.
func scanAndPrint(tree *spatial.PackedQuadTree, keep func(orb.Point) bool) {
	reader, err := store.OpenTermReader(cli.TermFile)
	sigolo.FatalCheck(err)
	defer reader.Close()

	it, err := reader.Seek(0)
	sigolo.FatalCheck(err)

	matched := 0
	for {
		term, ok, err := it.Next()
		sigolo.FatalCheck(err)
		if !ok {
			break
		}

		cell, err := tree.ReadCell(term)
		sigolo.FatalCheck(err)

		center := cell.Rectangle().Center()
		if keep(center) {
			fmt.Printf("%f,%f\n", center.Lon(), center.Lat())
			matched++
		}
	}
	sigolo.Debugf("matched %d of %d stored terms", matched, reader.Len())
}
