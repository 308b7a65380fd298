package raster

import "testing"

// 3x3 grid, upper-left (0, 30), cell 10x10:
// rows run north to south.
func testGrid() *MemGrid {
	return &MemGrid{
		OriginX: 0, OriginY: 30,
		CellX: 10, CellY: 10,
		NoData: -32768,
		Data: [][]float64{
			{1, 2, 3},
			{4, 5, 6},
			{7, -32768, 9},
		},
	}
}

func TestReadWindowAligned(t *testing.T) {
	g := testGrid()
	arr, err := g.ReadWindow(Point{X: 0, Y: 30}, 3, 3, -9999)
	if err != nil {
		t.Fatal(err)
	}
	if arr[0][0] != 1 || arr[0][2] != 3 || arr[2][0] != 7 {
		t.Errorf("unexpected window contents: %v", arr)
	}
	if arr[2][1] != -9999 {
		t.Errorf("native nodata = %v, want caller sentinel -9999", arr[2][1])
	}
}

func TestReadWindowSubregion(t *testing.T) {
	g := testGrid()
	// Window anchored one cell in and one row down.
	arr, err := g.ReadWindow(Point{X: 10, Y: 20}, 2, 2, -9999)
	if err != nil {
		t.Fatal(err)
	}
	if arr[0][0] != 5 || arr[0][1] != 6 || arr[1][1] != 9 {
		t.Errorf("unexpected subwindow: %v", arr)
	}
}

func TestReadWindowPastBounds(t *testing.T) {
	g := testGrid()
	arr, err := g.ReadWindow(Point{X: -10, Y: 40}, 5, 5, -9999)
	if err != nil {
		t.Fatal(err)
	}
	// Border ring is outside the grid.
	if arr[0][0] != -9999 || arr[4][4] != -9999 {
		t.Errorf("out-of-grid cells not sentinel: %v", arr)
	}
	if arr[1][1] != 1 {
		t.Errorf("interior cell = %v, want 1", arr[1][1])
	}
}

func TestReadWindowRejectsEmpty(t *testing.T) {
	g := testGrid()
	if _, err := g.ReadWindow(Point{}, 0, 3, -9999); err == nil {
		t.Error("expected error for zero-width window")
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("elevation")
	if err != nil || r != Elevation {
		t.Fatalf("ParseRole(elevation) = %v, %v", r, err)
	}
	if !r.IsElevation() {
		t.Error("Elevation.IsElevation() = false")
	}
	if r.Prefix() != "ELE" {
		t.Errorf("Elevation.Prefix() = %q", r.Prefix())
	}
	if _, err := ParseRole("slope"); err == nil {
		t.Error("expected error for unknown role")
	}
}
