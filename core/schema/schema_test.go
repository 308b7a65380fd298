package schema

import (
	"errors"
	"testing"

	"lcsample-core/raster"
)

func TestRolesFor(t *testing.T) {
	cases := []struct {
		kind DataKind
		want []raster.Role
	}{
		{Codes, []raster.Role{raster.Landcover, raster.Elevation}},
		{LAIKind, []raster.Role{raster.Height, raster.Elevation, raster.LAI, raster.K, raster.Overhang}},
		{CanopyCover, []raster.Role{raster.Height, raster.Elevation, raster.Canopy, raster.Overhang}},
	}
	for _, c := range cases {
		got, err := RolesFor(c.kind)
		if err != nil {
			t.Fatalf("RolesFor(%s): %v", c.kind, err)
		}
		if len(got) != len(c.want) {
			t.Fatalf("RolesFor(%s) = %v, want %v", c.kind, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("RolesFor(%s)[%d] = %s, want %s", c.kind, i, got[i], c.want[i])
			}
		}
	}
}

func TestRolesForUnknownKind(t *testing.T) {
	if _, err := RolesFor("Vegetation"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestValidate(t *testing.T) {
	good := Spec{TransectCount: 8, ZoneCount: 4, SampleSpacing: 8, DataKind: Codes}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}
	bad := []Spec{
		{TransectCount: 0, ZoneCount: 4, SampleSpacing: 8, DataKind: Codes},
		{TransectCount: 8, ZoneCount: 0, SampleSpacing: 8, DataKind: Codes},
		{TransectCount: 8, ZoneCount: 4, SampleSpacing: 0, DataKind: Codes},
		{TransectCount: 8, ZoneCount: 4, SampleSpacing: 8, DataKind: "nope"},
	}
	for i, s := range bad {
		if err := s.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("bad[%d]: err = %v, want ErrInvalidConfig", i, err)
		}
	}
}

func TestDirectionsEvenSpacing(t *testing.T) {
	s := Spec{TransectCount: 4, ZoneCount: 1, SampleSpacing: 1, DataKind: Codes}
	got := s.Directions()
	want := []float64{90, 180, 270, 360}
	if len(got) != len(want) {
		t.Fatalf("Directions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Directions()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDirectionsLegacy(t *testing.T) {
	s := Spec{TransectCount: 8, ZoneCount: 1, SampleSpacing: 1, DataKind: Codes, LegacyDirections: true}
	got := s.Directions()
	want := []float64{45, 90, 135, 180, 225, 270, 315}
	if len(got) != len(want) {
		t.Fatalf("legacy Directions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("legacy Directions()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// Four transects, two zones, emergent on, Codes: 8 LC fields + emergent +
// 8 ELE fields = 17 total, emergent first within the LC run.
func TestFieldNamesScenario(t *testing.T) {
	s := Spec{TransectCount: 4, ZoneCount: 2, IncludeStreamSample: true, SampleSpacing: 10, DataKind: Codes}
	got, err := s.FieldNames()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"LC_T0_S0",
		"LC_T1_S1", "LC_T1_S2",
		"LC_T2_S1", "LC_T2_S2",
		"LC_T3_S1", "LC_T3_S2",
		"LC_T4_S1", "LC_T4_S2",
		"ELE_T1_S1", "ELE_T1_S2",
		"ELE_T2_S1", "ELE_T2_S2",
		"ELE_T3_S1", "ELE_T3_S2",
		"ELE_T4_S1", "ELE_T4_S2",
	}
	if len(got) != 17 {
		t.Fatalf("len(FieldNames) = %d, want 17: %v", len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FieldNames[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// Length = roles*dirs*zones + one emergent per non-elevation role, and no
// duplicate names.
func TestFieldNamesCompleteness(t *testing.T) {
	specs := []Spec{
		{TransectCount: 8, ZoneCount: 4, IncludeStreamSample: true, SampleSpacing: 8, DataKind: LAIKind},
		{TransectCount: 3, ZoneCount: 5, IncludeStreamSample: false, SampleSpacing: 8, DataKind: CanopyCover},
		{TransectCount: 8, ZoneCount: 4, IncludeStreamSample: true, SampleSpacing: 8, DataKind: Codes, LegacyDirections: true},
	}
	for _, s := range specs {
		fields, err := s.FieldNames()
		if err != nil {
			t.Fatal(err)
		}
		roles, _ := RolesFor(s.DataKind)
		nonEle := 0
		for _, r := range roles {
			if !r.IsElevation() {
				nonEle++
			}
		}
		want := len(roles) * len(s.Directions()) * s.ZoneCount
		if s.IncludeStreamSample {
			want += nonEle
		}
		if len(fields) != want {
			t.Errorf("%s: len = %d, want %d", s.DataKind, len(fields), want)
		}
		seen := map[string]bool{}
		for _, f := range fields {
			if seen[f] {
				t.Errorf("%s: duplicate field %q", s.DataKind, f)
			}
			seen[f] = true
		}
	}
}

func TestFieldName(t *testing.T) {
	if got := FieldName(raster.Landcover, 3, 2); got != "LC_T3_S2" {
		t.Errorf("FieldName = %q, want LC_T3_S2", got)
	}
	if got := FieldName(raster.K, 0, 0); got != "k_T0_S0" {
		t.Errorf("FieldName = %q, want k_T0_S0", got)
	}
}
