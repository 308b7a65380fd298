// Package raster defines the contracts the sampler needs from raster data:
// tagged raster roles, the windowed-read Store interface, and a dense
// in-memory grid implementation.
package raster

import "fmt"

// Role identifies what a configured raster measures. Rasters are tagged
// explicitly so two inputs sharing a path never get confused with each other.
type Role string

const (
	Landcover Role = "landcover"
	Elevation Role = "elevation"
	Height    Role = "height"
	Canopy    Role = "canopy"
	LAI       Role = "lai"
	K         Role = "k"
	Overhang  Role = "overhang"
)

// prefixes match the legacy output schema and must never change: downstream
// models key on these exact strings.
var prefixes = map[Role]string{
	Landcover: "LC",
	Elevation: "ELE",
	Height:    "HT",
	Canopy:    "CAN",
	LAI:       "LAI",
	K:         "k",
	Overhang:  "OH",
}

// Prefix returns the field-name prefix for the role.
func (r Role) Prefix() string { return prefixes[r] }

// IsElevation reports whether values of this role are vertical distances
// subject to z-unit conversion.
func (r Role) IsElevation() bool { return r == Elevation }

// Valid reports whether the role is one of the known tags.
func (r Role) Valid() bool { _, ok := prefixes[r]; return ok }

// ParseRole maps a configuration string onto a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown raster role %q", s)
	}
	return r, nil
}

// Point is a world coordinate in the node source's planar units.
type Point struct {
	X, Y float64
}

// Store is a read-only raster exposing its cell size and windowed reads.
// ReadWindow materializes a dense ncols x nrows array anchored at origin,
// the window's upper-left corner (minimum X, maximum Y). Indexing is
// [row][col] with row 0 at the window's northern edge. Cells outside the
// raster or holding the raster's native nodata come back as the caller's
// nodata sentinel.
type Store interface {
	CellSize() (dx, dy float64)
	ReadWindow(origin Point, ncols, nrows int, nodata float64) ([][]float64, error)
}

// Input pairs a role tag with an opened raster store.
type Input struct {
	Role  Role
	Name  string
	Store Store
}
