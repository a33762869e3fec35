package storage

import (
	"context"
	"testing"

	"heatmap_loader/internal/heatmap"
)

func TestMemoryAppend(t *testing.T) {
	m := &Memory{}
	ctx := context.Background()

	if err := m.AppendRows(ctx, []heatmap.Record{{Hex: "aa0001", T: 1000}}); err != nil {
		t.Fatal(err)
	}
	if err := m.AppendRows(ctx, []heatmap.Record{{Hex: "bb0002", T: 2000}, {Hex: "cc0003", T: 3000}}); err != nil {
		t.Fatal(err)
	}

	rows := m.Rows()
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Hex != "aa0001" || rows[2].Hex != "cc0003" {
		t.Errorf("rows out of order: %+v", rows)
	}
	if m.Batches() != 2 {
		t.Errorf("batches = %d, want 2", m.Batches())
	}
}

func TestRowValues(t *testing.T) {
	flight := "BAW123  "
	squawk := "1800"
	gs := 250.0

	full := heatmap.Record{
		T: 1000.5, Hex: "4ca1d3", Flight: &flight, Squawk: &squawk,
		Lat: 47, Lon: 8, Alt: 100, GS: &gs, Type: heatmap.TypeMLAT,
	}
	got := rowValues(full)
	if len(got) != len(stagingColumns) {
		t.Fatalf("got %d values, want %d", len(got), len(stagingColumns))
	}
	if got[0] != 1000.5 || got[1] != "4ca1d3" {
		t.Errorf("t, hex = %v, %v", got[0], got[1])
	}
	if got[6] != int64(100) {
		t.Errorf("alt = %v (%T), want int64 100", got[6], got[6])
	}
	if got[8] != int16(heatmap.TypeMLAT) {
		t.Errorf("type = %v (%T), want int16 %d", got[8], got[8], heatmap.TypeMLAT)
	}

	// Absent optionals must land as typed nils so COPY writes NULLs.
	bare := heatmap.Record{T: 1, Hex: "aa0001"}
	got = rowValues(bare)
	if v := got[2].(*string); v != nil {
		t.Errorf("flight = %v, want nil", v)
	}
	if v := got[3].(*string); v != nil {
		t.Errorf("squawk = %v, want nil", v)
	}
	if v := got[7].(*float64); v != nil {
		t.Errorf("gs = %v, want nil", v)
	}
}

func TestSubject(t *testing.T) {
	tests := []struct {
		hex  string
		want string
	}{
		{"4ca1d3", "heatmap.positions.4ca1d3"},
		{"~2d0661", "heatmap.positions.2d0661"},
	}
	for _, tt := range tests {
		if got := subject(tt.hex); got != tt.want {
			t.Errorf("subject(%q) = %q, want %q", tt.hex, got, tt.want)
		}
	}
}
