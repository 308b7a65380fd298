package writers

import (
	"bytes"
	"strings"
	"testing"

	"lcsample-core/aggregate"
	"lcsample-core/raster"
	"lcsample-core/transect"
)

func TestWriteNodeFields(t *testing.T) {
	blk := &transect.Block{
		StreamID: "jc",
		Points: []*transect.Point{
			{StreamID: "jc", NodeID: 1, Transect: 0, Zone: 0,
				Values: map[raster.Role]float64{raster.Landcover: 42}},
			{StreamID: "jc", NodeID: 1, Transect: 1, Zone: 1,
				Values: map[raster.Role]float64{raster.Landcover: 7, raster.Elevation: 30.48}},
		},
	}
	res := aggregate.New()
	res.MergeBlock(blk, []raster.Role{raster.Landcover, raster.Elevation})

	nodes := []transect.Node{
		{StreamID: "jc", NodeID: 1, StreamKM: 0.5},
		{StreamID: "jc", NodeID: 2, StreamKM: 1.5}, // never sampled
	}
	fields := []string{"LC_T0_S0", "LC_T1_S1", "ELE_T1_S1"}

	var buf bytes.Buffer
	if err := WriteNodeFields(&buf, nodes, fields, res); err != nil {
		t.Fatalf("WriteNodeFields: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"stream_id,node_id,stream_km,LC_T0_S0,LC_T1_S1,ELE_T1_S1",
		"jc,1,0.5,42,7,30.48",
		"jc,2,1.5,,,",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
