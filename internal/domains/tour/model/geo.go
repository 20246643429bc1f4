package model

import (
	"strconv"
	"strings"
)

// Unit is the distance unit of the geo routes. Anything but "mi" is km.
type Unit string

const (
	UnitMiles      Unit = "mi"
	UnitKilometers Unit = "km"

	earthRadiusMiles = 3963.2
	earthRadiusKm    = 6378.1
	earthRadiusM     = 6378100.0

	metersToMiles = 0.000621371
	metersToKm    = 0.001
)

func ParseUnit(s string) Unit {
	if Unit(s) == UnitMiles {
		return UnitMiles
	}
	return UnitKilometers
}

// RadiusRadians converts a distance into the central angle used by the
// spherical within-query.
func (u Unit) RadiusRadians(distance float64) float64 {
	if u == UnitMiles {
		return distance / earthRadiusMiles
	}
	return distance / earthRadiusKm
}

// DistanceMultiplier converts a central angle in radians to u.
func (u Unit) DistanceMultiplier() float64 {
	if u == UnitMiles {
		return earthRadiusM * metersToMiles
	}
	return earthRadiusM * metersToKm
}

type LatLng struct {
	Lat float64
	Lng float64
}

// ParseLatLng parses "lat,lng".
func ParseLatLng(s string) (LatLng, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return LatLng{}, ErrBadLatLng
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return LatLng{}, ErrBadLatLng
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || lng < -180 || lng > 180 {
		return LatLng{}, ErrBadLatLng
	}

	return LatLng{Lat: lat, Lng: lng}, nil
}
