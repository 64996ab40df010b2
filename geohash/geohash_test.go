package geohash

import (
	"math/rand"
	"testing"

	"geocore/util"
)

func TestStringEncodeKnownValue(t *testing.T) {
	// Geohash round-trip for San Francisco.
	got := StringEncode(37.7749, -122.4194, 9)
	util.AssertEqual(t, "9q8yyk8yt", got)

	d, err := DecodeString(got)
	util.AssertNil(t, err)
	util.AssertApprox(t, 37.7749, d.Lat, d.LatError)
	util.AssertApprox(t, -122.4194, d.Lon, d.LonError)
}

func TestStringEncodeMatchesLongEncode(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		lat := -90 + r.Float64()*179.999
		lon := -180 + r.Float64()*359.999
		precision := 1 + r.Intn(MaxPrecision)

		fromString := StringEncode(lat, lon, precision)
		fromLong := StringEncodeFromLong(LongEncode(lat, lon, precision))

		util.AssertEqual(t, fromLong, fromString)
	}
}

func TestLongEncodeFromStringRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		lat := -90 + r.Float64()*179.999
		lon := -180 + r.Float64()*359.999
		precision := 1 + r.Intn(MaxPrecision)

		hash := StringEncode(lat, lon, precision)

		packed, err := LongEncodeFromString(hash)
		util.AssertNil(t, err)
		util.AssertEqual(t, LongEncode(lat, lon, precision), packed)

		util.AssertEqual(t, hash, StringEncodeFromLong(packed))
	}
}

func TestLongEncodeFromStringRejectsInvalidInput(t *testing.T) {
	_, err := LongEncodeFromString("")
	util.AssertNotNil(t, err)

	_, err = LongEncodeFromString("123456789012345")
	util.AssertNotNil(t, err)

	_, err = LongEncodeFromString("9q8yyAil") // 'A', 'i', 'l' are not in the alphabet
	util.AssertNotNil(t, err)
}

func TestDecodeErrorBarsShrinkWithPrecision(t *testing.T) {
	d1, err := DecodeString("9")
	util.AssertNil(t, err)
	d9, err := DecodeString("9q8yyk8yt")
	util.AssertNil(t, err)

	util.AssertTrue(t, d9.LatError < d1.LatError)
	util.AssertTrue(t, d9.LonError < d1.LonError)
}

func TestBboxOfContainsOriginalPoint(t *testing.T) {
	lat, lon := 48.1374, 11.5755
	hash := StringEncode(lat, lon, 7)

	bbox, err := BboxOf(hash)
	util.AssertNil(t, err)
	util.AssertTrue(t, bbox.Min[0] <= lon && lon <= bbox.Max[0])
	util.AssertTrue(t, bbox.Min[1] <= lat && lat <= bbox.Max[1])
}

func TestLevelsForPrecisionIsMonotoneDecreasing(t *testing.T) {
	prevLevel := 0
	for _, meters := range []float64{5000000, 1000000, 100000, 10000, 1000, 100, 10, 1} {
		level := LevelsForPrecision(meters)
		util.AssertTrue(t, level >= prevLevel)
		prevLevel = level
	}
}

func TestLatClampAndLonWrap(t *testing.T) {
	// lat=90 is not representable; must clamp just below 90.
	justBelow := StringEncode(89.999999, 0, 5)
	clamped := StringEncode(90, 0, 5)
	util.AssertEqual(t, justBelow, clamped)

	// lon=180 wraps to -180.
	util.AssertEqual(t, StringEncode(0, -180, 5), StringEncode(0, 180, 5))
}

func TestValidPrefix(t *testing.T) {
	util.AssertTrue(t, ValidPrefix("9q8yyk8yt"))
	util.AssertFalse(t, ValidPrefix("9q8yyAil"))
}
