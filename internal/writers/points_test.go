package writers

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"lcsample-core/raster"
	"lcsample-core/transect"
	"lcsample/pkg/api"
)

var testRoles = []raster.Role{raster.Landcover, raster.Elevation}

func testPoints() []*transect.Point {
	return []*transect.Point{
		{
			StreamID: "jc", NodeID: 1, Azimuth: 0, Transect: 0, Zone: 0,
			X: 1000, Y: 2000,
			Values: map[raster.Role]float64{raster.Landcover: 3, raster.Elevation: 30.48},
		},
		{
			StreamID: "jc", NodeID: 1, Azimuth: 90, Transect: 1, Zone: 1,
			X: 1010, Y: 2000,
			Values: map[raster.Role]float64{raster.Landcover: 5},
		},
	}
}

func feed(t *testing.T, in chan<- *transect.Point, errCh <-chan error) error {
	t.Helper()
	for _, p := range testPoints() {
		in <- p
	}
	close(in)
	return <-errCh
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	in, errCh := StartPointWriter(&buf, FormatCSV, testRoles, true, 0)
	if err := feed(t, in, errCh); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if lines[0] != "x,y,stream_id,node_id,azimuth,transect,zone,LC,ELE" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "1000,2000,jc,1,0,0,0,3,30.48" {
		t.Errorf("emergent row = %q", lines[1])
	}
	// Unsampled elevation leaves its column empty.
	if lines[2] != "1010,2000,jc,1,90,1,1,5," {
		t.Errorf("transect row = %q", lines[2])
	}
}

func TestCSVWriterNoHeader(t *testing.T) {
	var buf bytes.Buffer
	in, errCh := StartPointWriter(&buf, FormatCSV, testRoles, false, 0)
	if err := feed(t, in, errCh); err != nil {
		t.Fatal(err)
	}
	if strings.HasPrefix(buf.String(), "x,y") {
		t.Error("header emitted despite header=false")
	}
}

func TestJSONLWriter(t *testing.T) {
	var buf bytes.Buffer
	in, errCh := StartPointWriter(&buf, FormatJSONL, testRoles, true, 0)
	if err := feed(t, in, errCh); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	var rec api.PointV1
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.StreamID != "jc" || rec.Values["ELE"] != 30.48 {
		t.Errorf("first record = %+v", rec)
	}
	var rec2 api.PointV1
	if err := json.Unmarshal([]byte(lines[1]), &rec2); err != nil {
		t.Fatal(err)
	}
	if _, ok := rec2.Values["ELE"]; ok {
		t.Error("unsampled elevation serialized")
	}
}

func TestUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	in, errCh := StartPointWriter(&buf, "parquet", testRoles, true, 0)
	close(in)
	if err := <-errCh; err == nil {
		t.Error("expected error for unknown format")
	}
	if ValidFormat("parquet") {
		t.Error("ValidFormat(parquet) = true")
	}
	if !ValidFormat(FormatCSV) || !ValidFormat(FormatJSONL) {
		t.Error("builtin formats reported invalid")
	}
}
