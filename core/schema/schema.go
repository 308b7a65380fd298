// Package schema owns the sampling configuration and the generated output
// schema: the ordered transect directions, the raster roles each data kind
// requires, and the field-name rule. Nothing else in the system is allowed
// to invent field names.
package schema

import (
	"errors"
	"fmt"

	"lcsample-core/raster"
)

// ErrInvalidConfig is returned for unusable sampling configuration: unknown
// data kinds, non-positive counts, or node input that violates stream order.
var ErrInvalidConfig = errors.New("invalid configuration")

// DataKind selects which raster roles are sampled.
type DataKind string

const (
	Codes       DataKind = "Codes"
	CanopyCover DataKind = "CanopyCover"
	LAIKind     DataKind = "LAI"
)

// RolesFor returns the ordered raster roles a data kind samples. The order is
// load-bearing: it fixes both the raster processing sequence and the field
// layout of the outputs.
func RolesFor(kind DataKind) ([]raster.Role, error) {
	switch kind {
	case Codes:
		return []raster.Role{raster.Landcover, raster.Elevation}, nil
	case LAIKind:
		return []raster.Role{raster.Height, raster.Elevation, raster.LAI, raster.K, raster.Overhang}, nil
	case CanopyCover:
		return []raster.Role{raster.Height, raster.Elevation, raster.Canopy, raster.Overhang}, nil
	}
	return nil, fmt.Errorf("unknown landcover data kind %q: %w", kind, ErrInvalidConfig)
}

// Spec is the immutable sampling configuration.
type Spec struct {
	TransectCount       int      // radial directions per node
	ZoneCount           int      // samples per transect, excluding the node itself
	IncludeStreamSample bool     // emergent zone-0 sample at the node
	SampleSpacing       float64  // meters between consecutive zones
	DataKind            DataKind
	LegacyDirections    bool // heatsource 8: seven fixed azimuths, no north
}

// Validate rejects unusable configuration before any raster I/O happens.
func (s Spec) Validate() error {
	if s.TransectCount < 1 {
		return fmt.Errorf("transect count %d must be >= 1: %w", s.TransectCount, ErrInvalidConfig)
	}
	if s.ZoneCount < 1 {
		return fmt.Errorf("zone count %d must be >= 1: %w", s.ZoneCount, ErrInvalidConfig)
	}
	if s.SampleSpacing <= 0 {
		return fmt.Errorf("sample spacing %g must be > 0: %w", s.SampleSpacing, ErrInvalidConfig)
	}
	if _, err := RolesFor(s.DataKind); err != nil {
		return err
	}
	return nil
}

// legacyDirections is the heatsource 8 layout: eight cardinal directions
// minus north.
var legacyDirections = []float64{45, 90, 135, 180, 225, 270, 315}

// Directions returns the ordered transect azimuths in degrees, measured
// clockwise from north.
func (s Spec) Directions() []float64 {
	if s.LegacyDirections {
		out := make([]float64, len(legacyDirections))
		copy(out, legacyDirections)
		return out
	}
	out := make([]float64, s.TransectCount)
	for i := range out {
		out[i] = float64(i+1) * 360.0 / float64(s.TransectCount)
	}
	return out
}

// Zones returns the ordered zone indices 1..ZoneCount.
func (s Spec) Zones() []int {
	out := make([]int, s.ZoneCount)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// FieldName builds the output key for one (role, transect, zone) sample.
// Transect is the 1-based position of the direction in Directions, or 0 for
// the emergent sample; zone is the 1-based sample index, or 0 for emergent.
func FieldName(role raster.Role, transect, zone int) string {
	return fmt.Sprintf("%s_T%d_S%d", role.Prefix(), transect, zone)
}

// FieldNames generates the complete ordered output field list: role by role,
// direction by direction, zone by zone, with the emergent <prefix>_T0_S0
// field inserted once per non-elevation role just before that role's first
// direction/zone entry. The interleaving reproduces the legacy header layout
// exactly; downstream schemas depend on it.
func (s Spec) FieldNames() ([]string, error) {
	roles, err := RolesFor(s.DataKind)
	if err != nil {
		return nil, err
	}
	dirs := s.Directions()
	zones := s.Zones()

	var fields []string
	for _, role := range roles {
		for d := range dirs {
			for _, z := range zones {
				if s.IncludeStreamSample && !role.IsElevation() && d == 0 && z == zones[0] {
					fields = append(fields, FieldName(role, 0, 0))
				}
				fields = append(fields, FieldName(role, d+1, z))
			}
		}
	}
	return fields, nil
}
