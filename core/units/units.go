// Package units resolves spatial-reference and elevation unit names into
// scalar conversion factors to and from meters. Sampling geometry is
// meaningless without a projected linear unit, so anything angular or
// unrecognized is rejected outright.
package units

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedUnit is returned when a spatial reference or elevation unit
// is not a recognized projected linear unit.
var ErrUnsupportedUnit = errors.New("unsupported unit")

// metersPer maps normalized linear unit names to their length in meters.
var metersPer = map[string]float64{
	"meter":            1.0,
	"meters":           1.0,
	"metre":            1.0,
	"metres":           1.0,
	"foot":             0.3048,
	"feet":             0.3048,
	"international_foot": 0.3048,
	"foot_us":          0.3048006096012192,
	"us_survey_foot":   0.3048006096012192,
}

// angular units that show up when someone feeds in a geographic CRS.
var angular = map[string]bool{
	"degree":  true,
	"degrees": true,
	"radian":  true,
	"radians": true,
	"grad":    true,
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// MetersPerUnit returns how many meters one unit of the named spatial
// reference linear unit spans. Geographic/angular units fail: point
// coordinates must be planar before any transect distance makes sense.
func MetersPerUnit(name string) (float64, error) {
	n := normalize(name)
	if angular[n] {
		return 0, fmt.Errorf("unit %q is angular, use a projected coordinate system in feet or meters: %w", name, ErrUnsupportedUnit)
	}
	f, ok := metersPer[n]
	if !ok {
		return 0, fmt.Errorf("unit %q is not a recognized projected linear unit: %w", name, ErrUnsupportedUnit)
	}
	return f, nil
}

// UnitsPerMeter is the inverse factor, used to convert meter-denominated
// sample spacing into the node source's planar units.
func UnitsPerMeter(name string) (float64, error) {
	f, err := MetersPerUnit(name)
	if err != nil {
		return 0, err
	}
	return 1 / f, nil
}

// ElevationToMeters returns the factor that converts elevation raster values
// in the named vertical unit to meters. Only "Meters" and "Feet" are
// accepted; callers with anything else must normalize their elevation raster
// before sampling.
func ElevationToMeters(name string) (float64, error) {
	switch normalize(name) {
	case "meters", "meter", "metre", "metres":
		return 1.0, nil
	case "feet", "foot":
		return 0.3048, nil
	}
	return 0, fmt.Errorf("elevation z units %q: modify the raster so z units are meters or feet: %w", name, ErrUnsupportedUnit)
}
