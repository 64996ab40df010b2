// Package geohash implements the base-32 geohash codec: string and packed
// long encoding, the mutual inverses between them, envelope computation, and
// the monotone precision-to-level mapping used to pick a geohash depth for a
// target cell size.
package geohash

import (
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"geocore/bitcodec"
)

const (
	// Base32 is the geohash alphabet; for strings of equal length built from
	// it, lexicographic order equals numeric order of the packed form they
	// decode to. Strings of different lengths do not keep that order once
	// packed (see LongEncode).
	Base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

	// MinPrecision and MaxPrecision bound the number of base-32 characters
	// (and, equivalently, the packed level nibble) a geohash may have.
	MinPrecision = 1
	MaxPrecision = 12

	latMin, latMax = -90.0, 90.0
	lonMin, lonMax = -180.0, 180.0
)

var base32Index [128]int8

func init() {
	for i := range base32Index {
		base32Index[i] = -1
	}
	for i := 0; i < len(Base32); i++ {
		base32Index[Base32[i]] = int8(i)
	}
}

func clampLat(lat float64) float64 {
	if lat >= latMax {
		return latMax - 1e-12
	}
	return lat
}

func wrapLon(lon float64) float64 {
	if lon >= lonMax {
		return lonMin
	}
	return lon
}

// rawMorton interleaves (lat, lon) the way bitcodec does (lon on even bit
// positions, lat on odd) and then flip-flops the planes so the bit order,
// read from the top down, alternates lon, lat, lon, lat, ... — the geohash
// convention of splitting longitude first. The result occupies the low 62
// bits (31 bits per axis); bits 62-63 are always zero.
func rawMorton(lat, lon float64) uint64 {
	return bitcodec.FlipFlop(bitcodec.MortonEncode(wrapLon(lon), clampLat(lat)))
}

// LongEncode packs (lat, lon, precision) into a 64-bit value: the low 4 bits
// hold precision and the precision*5 bits directly above them hold the
// interleaved geohash; any higher bits are zero. The hash is not left-aligned,
// so a shorter hash is not ordered before its own extensions by numeric
// value. precision must be in [MinPrecision, MaxPrecision].
func LongEncode(lat, lon float64, precision int) uint64 {
	msf := uint(62 - precision*5)
	bits := (rawMorton(lat, lon) >> msf) << 4
	return bits | uint64(precision)
}

// StringEncode returns the precision-character base-32 geohash for (lat,
// lon). lat >= 90 is clamped just below 90 and lon >= 180 wraps to -180.
func StringEncode(lat, lon float64, precision int) string {
	return StringEncodeFromLong(LongEncode(lat, lon, precision))
}

// StringEncodeFromLong converts a packed geohash (as produced by
// LongEncode) into its base-32 string form.
func StringEncodeFromLong(packed uint64) string {
	precision := int(packed & 0xf)
	bits := packed >> 4

	chars := make([]byte, precision)
	for i := precision - 1; i >= 0; i-- {
		chars[i] = Base32[bits&0x1f]
		bits >>= 5
	}
	return string(chars)
}

// LongEncodeFromString decodes a base-32 geohash string back into its packed
// long form. Returns an error if the string contains characters outside the
// geohash alphabet or exceeds MaxPrecision.
func LongEncodeFromString(hash string) (uint64, error) {
	if len(hash) < MinPrecision || len(hash) > MaxPrecision {
		return 0, errors.Errorf("geohash %q has invalid length %d, want %d..%d", hash, len(hash), MinPrecision, MaxPrecision)
	}

	var bits uint64
	for i := 0; i < len(hash); i++ {
		c := hash[i]
		if c >= 128 || base32Index[c] < 0 {
			return 0, errors.Errorf("geohash %q contains invalid character %q", hash, c)
		}
		bits = (bits << 5) | uint64(base32Index[c])
	}
	return (bits << 4) | uint64(len(hash)), nil
}

// Decoded describes a geohash's centre point and half-width error bars,
// mirroring the interleaved bit-halving used to derive them.
type Decoded struct {
	Lat, Lon           float64
	LatError, LonError float64
}

// Decode expands a packed geohash back into its centre (lat, lon) and the
// per-axis error bars implied by its precision.
func Decode(packed uint64) Decoded {
	precision := int(packed & 0xf)
	msf := uint(62 - precision*5)
	raw := (packed >> 4) << msf

	morton := bitcodec.FlipFlop(raw)
	lon := bitcodec.MortonDecodeLon(morton)
	lat := bitcodec.MortonDecodeLat(morton)

	latBits := precision * 5 / 2
	lonBits := precision*5 - latBits
	latError := (latMax - latMin) / float64(uint64(1)<<uint(latBits+1))
	lonError := (lonMax - lonMin) / float64(uint64(1)<<uint(lonBits+1))

	// raw carries only the hash's own bits, so the Morton decode lands on the
	// cell's south-west corner; the centre is one half-width further on.
	return Decoded{
		Lat:      lat + latError,
		Lon:      lon + lonError,
		LatError: latError,
		LonError: lonError,
	}
}

// DecodeString decodes a base-32 geohash string into its centre and error
// bars.
func DecodeString(hash string) (Decoded, error) {
	packed, err := LongEncodeFromString(hash)
	if err != nil {
		return Decoded{}, err
	}
	return Decode(packed), nil
}

// BboxOf returns the rectangle covered by the given geohash string.
func BboxOf(hash string) (orb.Bound, error) {
	d, err := DecodeString(hash)
	if err != nil {
		return orb.Bound{}, err
	}
	return orb.Bound{
		Min: orb.Point{d.Lon - d.LonError, d.Lat - d.LatError},
		Max: orb.Point{d.Lon + d.LonError, d.Lat + d.LatError},
	}, nil
}

// LevelsForPrecision returns the smallest geohash precision (in
// MinPrecision..MaxPrecision characters) whose cell diagonal is at most
// meters. Precision is a monotone decreasing step function of cell size, so
// the first level found is the tightest that still satisfies the bound;
// MaxPrecision is returned if no level is tight enough.
func LevelsForPrecision(meters float64) int {
	for p := MinPrecision; p < MaxPrecision; p++ {
		if diagonalMeters(p) <= meters {
			return p
		}
	}
	return MaxPrecision
}

// diagonalMeters approximates the diagonal, in meters, of a geohash cell at
// the equator for the given precision: lonBits/latBits halve the 360/180
// degree world extents, and the result is converted with the standard
// ~111,320 m/degree equatorial scale.
func diagonalMeters(precision int) float64 {
	const metersPerDegree = 111320.0
	latBits := precision * 5 / 2
	lonBits := precision*5 - latBits
	h := 180.0 / float64(uint64(1)<<uint(latBits))
	w := 360.0 / float64(uint64(1)<<uint(lonBits))
	return math.Hypot(w, h) * metersPerDegree
}

// ValidPrefix reports whether s consists only of characters from the
// geohash base-32 alphabet. Useful for validating query input before
// calling LongEncodeFromString.
func ValidPrefix(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return r >= 128 || base32Index[r] < 0
	}) == -1
}
