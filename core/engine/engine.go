// Package engine maps block sample coordinates into windowed raster arrays
// and extracts one value per sample. A window covers one block's bounding
// box plus padding; requesting it is the only raster I/O in the system and
// the only place raster values are unit-converted.
package engine

import (
	"errors"
	"fmt"
	"math"

	"lcsample-core/raster"
	"lcsample-core/transect"
)

// Nodata is the sentinel recorded for samples that land on missing raster
// cells. It survives unit conversion bit-for-bit.
const Nodata = -9999.0

// ErrWindowTooLarge is returned when a block's bounding box implies a dense
// window the configured memory bound cannot hold. It is an expected,
// recoverable failure: rerun with a smaller block checkpoint distance.
var ErrWindowTooLarge = errors.New("raster window too large")

// Config holds the sampler's immutable tuning.
type Config struct {
	PadCells       float64 // bounding-box padding, in cell widths
	MaxWindowCells int     // cap on ncols*nrows per window; 0 = unbounded
}

// Engine samples blocks against rasters.
type Engine struct {
	cfg Config
}

// New creates an Engine.
func New(c Config) *Engine { return &Engine{cfg: c} }

// window is the derived read request for one block against one raster.
type window struct {
	origin       raster.Point // upper-left corner (min X, max Y)
	ncols, nrows int
	dx, dy       float64
}

// deriveWindow computes the minimal padded window covering every point in
// the block.
func (e *Engine) deriveWindow(st raster.Store, blk *transect.Block) (window, error) {
	dx, dy := st.CellSize()
	if dx <= 0 || dy <= 0 {
		return window{}, fmt.Errorf("engine: raster reports non-positive cell size %gx%g", dx, dy)
	}
	if len(blk.Points) == 0 {
		return window{}, fmt.Errorf("engine: block %s/%d has no sample points", blk.StreamID, blk.Index)
	}

	xmin, xmax := blk.Points[0].X, blk.Points[0].X
	ymin, ymax := blk.Points[0].Y, blk.Points[0].Y
	for _, p := range blk.Points[1:] {
		xmin = math.Min(xmin, p.X)
		xmax = math.Max(xmax, p.X)
		ymin = math.Min(ymin, p.Y)
		ymax = math.Max(ymax, p.Y)
	}
	pad := dx * e.cfg.PadCells
	xmin -= pad
	ymin -= pad
	xmax += pad
	ymax += pad

	w := window{
		origin: raster.Point{X: xmin, Y: ymax},
		ncols:  int(math.Ceil((xmax-xmin)/dx)) + 1,
		nrows:  int(math.Ceil((ymax-ymin)/dy)) + 1,
		dx:     dx,
		dy:     dy,
	}
	if e.cfg.MaxWindowCells > 0 && w.ncols*w.nrows > e.cfg.MaxWindowCells {
		return window{}, fmt.Errorf("engine: block %s/%d needs a %dx%d window (%d cells, cap %d), reduce the block checkpoint distance: %w",
			blk.StreamID, blk.Index, w.ncols, w.nrows, w.ncols*w.nrows, e.cfg.MaxWindowCells, ErrWindowTooLarge)
	}
	return w, nil
}

// SampleBlock reads the raster window covering blk and records the sampled
// value for every point under the input's role. factor converts raster
// values to meters (1.0 for non-elevation rasters); the nodata sentinel is
// requested from the store pre-scaled by 1/factor so missing cells read back
// as exactly Nodata after conversion.
func (e *Engine) SampleBlock(in raster.Input, factor float64, blk *transect.Block) error {
	if factor == 0 {
		return fmt.Errorf("engine: zero conversion factor for raster %s", in.Name)
	}
	w, err := e.deriveWindow(in.Store, blk)
	if err != nil {
		return err
	}

	rawNodata := Nodata / factor
	arr, err := in.Store.ReadWindow(w.origin, w.ncols, w.nrows, rawNodata)
	if err != nil {
		return fmt.Errorf("engine: read %s window %dx%d at (%g, %g): %w", in.Name, w.ncols, w.nrows, w.origin.X, w.origin.Y, err)
	}

	// Unit-normalize the whole window. Cells holding the raw sentinel become
	// exactly Nodata rather than trusting the multiplication to round-trip.
	for r := range arr {
		for c, v := range arr[r] {
			if v == rawNodata {
				arr[r][c] = Nodata
			} else {
				arr[r][c] = v * factor
			}
		}
	}

	for _, p := range blk.Points {
		col := int(math.Floor((p.X - w.origin.X) / w.dx))
		row := int(math.Floor((w.origin.Y - p.Y) / w.dy))
		if row < 0 || row >= len(arr) || col < 0 || col >= len(arr[row]) {
			return fmt.Errorf("engine: sample for node %s/%d maps to (%d,%d) outside %dx%d window", p.StreamID, p.NodeID, row, col, w.nrows, w.ncols)
		}
		p.Values[in.Role] = arr[row][col]
	}
	return nil
}
