package config

import (
	"testing"

	"geocore/util"
)

func TestValidateAcceptsGoodOptions(t *testing.T) {
	o := &Options{Tree: TreeQuadtree, Strategy: StrategyStreaming, TreeLevels: 10}
	util.AssertNil(t, o.Validate())
}

func TestValidateRejectsUnknownTree(t *testing.T) {
	o := &Options{Tree: "octree", Strategy: StrategyStreaming, TreeLevels: 10}
	util.AssertNotNil(t, o.Validate())
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	o := &Options{Tree: TreeGeohash, Strategy: "magic", TreeLevels: 5}
	util.AssertNotNil(t, o.Validate())
}

func TestValidateRejectsOutOfRangeLevels(t *testing.T) {
	o := &Options{Tree: TreeQuadtree, Strategy: StrategyTerm, TreeLevels: 99}
	util.AssertNotNil(t, o.Validate())

	o = &Options{Tree: TreeGeohash, Strategy: StrategyTerm, TreeLevels: 0}
	util.AssertNotNil(t, o.Validate())
}

func TestValidateResolvesLevelsFromPrecisionMeters(t *testing.T) {
	o := &Options{Tree: TreeGeohash, Strategy: StrategyTerm, PrecisionMeters: 100}
	util.AssertNil(t, o.Validate())
	util.AssertTrue(t, o.TreeLevels > 0)

	o = &Options{Tree: TreeQuadtree, Strategy: StrategyTerm, PrecisionMeters: 1000}
	util.AssertNil(t, o.Validate())
	util.AssertTrue(t, o.TreeLevels > 0)
}

func TestValidateRejectsOutOfRangeDistanceErrorPct(t *testing.T) {
	o := &Options{Tree: TreeGeohash, Strategy: StrategyTerm, TreeLevels: 5, DistanceErrorPct: 1.5}
	util.AssertNotNil(t, o.Validate())

	o = &Options{Tree: TreeGeohash, Strategy: StrategyTerm, TreeLevels: 5, DistanceErrorPct: 0.75}
	util.AssertNotNil(t, o.Validate())

	o = &Options{Tree: TreeGeohash, Strategy: StrategyTerm, TreeLevels: 5, DistanceErrorPct: 0.5}
	util.AssertNil(t, o.Validate())
}
