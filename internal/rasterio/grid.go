// Package rasterio loads Esri ASCII grid (.asc) rasters into in-memory
// stores. It is the repository's concrete raster backend; the core only ever
// sees the raster.Store interface.
package rasterio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"lcsample-core/raster"
)

// header keys accepted in any case, in any order, before the data body.
const defaultNodata = -9999

// Open reads an Esri ASCII grid file into a raster.MemGrid.
func Open(path string) (*raster.MemGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rasterio: %w", err)
	}
	defer f.Close()
	g, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("rasterio: %s: %w", path, err)
	}
	return g, nil
}

// Read parses an Esri ASCII grid from r. The header supplies ncols, nrows,
// the lower-left anchor (corner or cell center), cellsize, and an optional
// NODATA_value; the body holds nrows rows of ncols values, first row at the
// grid's northern edge.
func Read(r io.Reader) (*raster.MemGrid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		ncols, nrows       int
		xll, yll, cellsize float64
		nodata             = float64(defaultNodata)
		xcenter, ycenter   bool
		haveCols, haveRows bool
		haveX, haveY, haveCell bool
		data               [][]float64
	)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		// Header lines are "key value" pairs; the first line that does not
		// start with a known key begins the data body.
		if len(fields) == 2 && data == nil {
			key := strings.ToLower(fields[0])
			val := fields[1]
			switch key {
			case "ncols":
				n, err := strconv.Atoi(val)
				if err != nil {
					return nil, fmt.Errorf("bad ncols %q", val)
				}
				ncols, haveCols = n, true
				continue
			case "nrows":
				n, err := strconv.Atoi(val)
				if err != nil {
					return nil, fmt.Errorf("bad nrows %q", val)
				}
				nrows, haveRows = n, true
				continue
			case "xllcorner", "xllcenter":
				v, err := strconv.ParseFloat(val, 64)
				if err != nil {
					return nil, fmt.Errorf("bad %s %q", key, val)
				}
				xll, haveX = v, true
				xcenter = key == "xllcenter"
				continue
			case "yllcorner", "yllcenter":
				v, err := strconv.ParseFloat(val, 64)
				if err != nil {
					return nil, fmt.Errorf("bad %s %q", key, val)
				}
				yll, haveY = v, true
				ycenter = key == "yllcenter"
				continue
			case "cellsize":
				v, err := strconv.ParseFloat(val, 64)
				if err != nil || v <= 0 {
					return nil, fmt.Errorf("bad cellsize %q", val)
				}
				cellsize, haveCell = v, true
				continue
			case "nodata_value":
				v, err := strconv.ParseFloat(val, 64)
				if err != nil {
					return nil, fmt.Errorf("bad NODATA_value %q", val)
				}
				nodata = v
				continue
			}
		}

		// Data row.
		if !haveCols || !haveRows || !haveX || !haveY || !haveCell {
			return nil, fmt.Errorf("data row before complete header")
		}
		if len(fields) != ncols {
			return nil, fmt.Errorf("data row %d has %d values, want %d", len(data), len(fields), ncols)
		}
		row := make([]float64, ncols)
		for i, fv := range fields {
			v, err := strconv.ParseFloat(fv, 64)
			if err != nil {
				return nil, fmt.Errorf("bad value %q in row %d", fv, len(data))
			}
			row[i] = v
		}
		data = append(data, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(data) != nrows {
		return nil, fmt.Errorf("got %d data rows, header says %d", len(data), nrows)
	}

	// Normalize a cell-center anchor to the corner convention.
	if xcenter {
		xll -= cellsize / 2
	}
	if ycenter {
		yll -= cellsize / 2
	}

	return &raster.MemGrid{
		OriginX: xll,
		OriginY: yll + float64(nrows)*cellsize, // upper-left corner
		CellX:   cellsize,
		CellY:   cellsize,
		NoData:  nodata,
		Data:    data,
	}, nil
}
