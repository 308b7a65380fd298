// Package profile reads the TOML raster profile: which raster files to
// sample, what role each one plays, and the sampling defaults bundled with
// them.
package profile

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"lcsample-core/raster"
	"lcsample-core/schema"
)

// Sampling holds the geometry defaults carried in the profile. CLI flags
// override any of them.
type Sampling struct {
	Transects        int     `toml:"transects"`
	Zones            int     `toml:"zones"`
	StreamSample     bool    `toml:"stream_sample"`
	Spacing          float64 `toml:"spacing"`
	DataKind         string  `toml:"data_kind"`
	LegacyDirections bool    `toml:"legacy_directions"`
	BlockKM          float64 `toml:"block_km"`
}

// Raster is one configured raster file. Units applies to elevation rasters
// only ("Meters" or "Feet").
type Raster struct {
	Role  string `toml:"role"`
	Path  string `toml:"path"`
	Units string `toml:"units,omitempty"`
}

// Profile is the parsed raster profile file.
type Profile struct {
	Sampling Sampling `toml:"sampling"`
	Rasters  []Raster `toml:"raster"`
}

// Load reads a profile from path. Relative raster paths are resolved against
// the profile's directory.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile: reading %s: %w", path, err)
	}
	var p Profile
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("profile: parsing %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i := range p.Rasters {
		if p.Rasters[i].Path != "" && !filepath.IsAbs(p.Rasters[i].Path) {
			p.Rasters[i].Path = filepath.Join(dir, p.Rasters[i].Path)
		}
	}
	return &p, nil
}

// Save writes the profile to path, creating parent directories as needed.
func Save(path string, p *Profile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("profile: creating directory: %w", err)
	}
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("profile: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("profile: writing %s: %w", path, err)
	}
	return nil
}

// Resolve checks the profile's rasters against the data kind's required
// roles and opens each file through open, returning inputs in role order.
// ElevationUnits comes back from the elevation entry ("" when unset).
func (p *Profile) Resolve(kind schema.DataKind, open func(path string) (raster.Store, error)) (inputs []raster.Input, elevationUnits string, err error) {
	roles, err := schema.RolesFor(kind)
	if err != nil {
		return nil, "", err
	}

	byRole := make(map[raster.Role]Raster, len(p.Rasters))
	for _, r := range p.Rasters {
		role, err := raster.ParseRole(r.Role)
		if err != nil {
			return nil, "", fmt.Errorf("profile: %w: %w", err, schema.ErrInvalidConfig)
		}
		if _, dup := byRole[role]; dup {
			return nil, "", fmt.Errorf("profile: duplicate raster role %q: %w", r.Role, schema.ErrInvalidConfig)
		}
		byRole[role] = r
	}

	for _, role := range roles {
		entry, ok := byRole[role]
		if !ok {
			return nil, "", fmt.Errorf("profile: data kind %s requires a %s raster: %w", kind, role, schema.ErrInvalidConfig)
		}
		st, err := open(entry.Path)
		if err != nil {
			return nil, "", err
		}
		inputs = append(inputs, raster.Input{Role: role, Name: entry.Path, Store: st})
		if role.IsElevation() {
			elevationUnits = entry.Units
		}
	}
	return inputs, elevationUnits, nil
}
