// Package gis computes great-circle distances between geographic coordinates.
package gis

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Unit is a unit of distance.
type Unit string

const (
	Miles         Unit = "m"
	Kilometers    Unit = "k"
	NauticalMiles Unit = "n"
)

const (
	statuteMilesPerMinute = 1.1515
	kilometersPerMile     = 1.609344
	nauticalMilesPerMile  = 0.8684
)

// ParseUnit converts a unit abbreviation ("m", "k", "n") into a Unit.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case Miles, Kilometers, NauticalMiles:
		return Unit(s), nil
	default:
		return "", eris.Errorf("gis: unknown unit %q (valid: m, k, n)", s)
	}
}

// Distance returns the great-circle distance between two coordinates given in
// decimal degrees, using the spherical law of cosines.
func Distance(lat1, lng1, lat2, lng2 float64, unit Unit) float64 {
	return distanceRad(radians(lat1), radians(lng1), radians(lat2), radians(lng2), unit)
}

func distanceRad(lat1, lng1, lat2, lng2 float64, unit Unit) float64 {
	// sin²+cos² lands just under 1 for identical points, which acos turns
	// into a few hundred feet.
	if lat1 == lat2 && lng1 == lng2 {
		return 0
	}
	theta := lng1 - lng2
	cos := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(theta)
	// Rounding can push identical points just past 1.
	cos = math.Max(-1, math.Min(1, cos))

	dist := degrees(math.Acos(cos)) * 60 * statuteMilesPerMinute

	switch unit {
	case Kilometers:
		return dist * kilometersPerMile
	case NauticalMiles:
		return dist * nauticalMilesPerMile
	default:
		return dist
	}
}

// NewPoint returns an SRID 4326 point for the given latitude and longitude.
// Coordinates are stored in lng/lat (X/Y) order.
func NewPoint(lat, lng float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{lng, lat}).SetSRID(4326)
}

// DistanceBetween returns the distance between two points built by NewPoint.
func DistanceBetween(a, b *geom.Point, unit Unit) float64 {
	return Distance(a.Y(), a.X(), b.Y(), b.X(), unit)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
