package raster

import "fmt"

// MemGrid is a dense in-memory raster. Data is [row][col] with row 0 at the
// grid's northern edge. OriginX/OriginY locate the grid's upper-left corner.
// It backs the Esri ASCII reader and the package tests.
type MemGrid struct {
	OriginX, OriginY float64 // upper-left corner
	CellX, CellY     float64
	NoData           float64
	Data             [][]float64
}

// Rows returns the grid height in cells.
func (g *MemGrid) Rows() int { return len(g.Data) }

// Cols returns the grid width in cells.
func (g *MemGrid) Cols() int {
	if len(g.Data) == 0 {
		return 0
	}
	return len(g.Data[0])
}

// CellSize implements Store.
func (g *MemGrid) CellSize() (dx, dy float64) { return g.CellX, g.CellY }

// ReadWindow implements Store. The requested window may extend past the grid
// bounds; uncovered cells are filled with the caller's nodata sentinel, and
// cells equal to the grid's native nodata are rewritten to it as well.
func (g *MemGrid) ReadWindow(origin Point, ncols, nrows int, nodata float64) ([][]float64, error) {
	if ncols <= 0 || nrows <= 0 {
		return nil, fmt.Errorf("raster: invalid window %dx%d", ncols, nrows)
	}
	out := make([][]float64, nrows)
	for r := range out {
		row := make([]float64, ncols)
		for c := range row {
			row[c] = nodata
		}
		out[r] = row
	}

	// Offset of the requested window within the grid, in whole cells.
	colOff := int((origin.X - g.OriginX) / g.CellX)
	rowOff := int((g.OriginY - origin.Y) / g.CellY)

	for r := 0; r < nrows; r++ {
		gr := r + rowOff
		if gr < 0 || gr >= g.Rows() {
			continue
		}
		for c := 0; c < ncols; c++ {
			gc := c + colOff
			if gc < 0 || gc >= g.Cols() {
				continue
			}
			v := g.Data[gr][gc]
			if v == g.NoData {
				v = nodata
			}
			out[r][c] = v
		}
	}
	return out, nil
}
