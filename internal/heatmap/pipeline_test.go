package heatmap

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"
)

func testPipeline() *Pipeline {
	return NewPipeline(log.New(io.Discard))
}

// writeFile concatenates the given chunks into a file under dir.
func writeFile(t *testing.T, dir, name string, chunks ...[]byte) string {
	t.Helper()
	var buf []byte
	for _, c := range chunks {
		buf = append(buf, c...)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func mustPosition(t *testing.T, hex string, latRaw, lonRaw int32) []byte {
	t.Helper()
	rec, err := EncodePosition(hex, TypeADSBICAO, latRaw, lonRaw, 4, 2500)
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func mustIdentity(t *testing.T, hex, flight string, squawk uint16) []byte {
	t.Helper()
	rec, err := EncodeIdentity(hex, flight, squawk)
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestProcessFile_Missing(t *testing.T) {
	if got := testPipeline().ProcessFile(filepath.Join(t.TempDir(), "nope")); got != nil {
		t.Errorf("records = %v, want none", got)
	}
}

func TestProcessFile_Empty(t *testing.T) {
	path := writeFile(t, t.TempDir(), "0")
	if got := testPipeline().ProcessFile(path); got != nil {
		t.Errorf("records = %v, want none", got)
	}
}

func TestProcessFile_NoMarker(t *testing.T) {
	path := writeFile(t, t.TempDir(), "0", make([]byte, 64))
	if got := testPipeline().ProcessFile(path); got != nil {
		t.Errorf("records = %v, want none", got)
	}
}

func TestProcessFile_OddLength(t *testing.T) {
	path := writeFile(t, t.TempDir(), "0", EncodeFrameHeader(1000), []byte{1, 2, 3})
	if got := testPipeline().ProcessFile(path); got != nil {
		t.Errorf("records = %v, want none", got)
	}
}

func TestProcessFile_TruncatedRecord(t *testing.T) {
	// A frame whose record region is not a whole number of records.
	path := writeFile(t, t.TempDir(), "0", EncodeFrameHeader(1000), make([]byte, 8))
	if got := testPipeline().ProcessFile(path); got != nil {
		t.Errorf("records = %v, want none", got)
	}
}

func TestProcessFile_SingleRecord(t *testing.T) {
	path := writeFile(t, t.TempDir(), "0",
		EncodeFrameHeader(1000),
		mustPosition(t, "0abcde", 47_000_000, 8_000_000),
	)

	got := testPipeline().ProcessFile(path)
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	r := got[0]
	if r.T != 1000 {
		t.Errorf("T = %v, want 1000", r.T)
	}
	if r.Hex != "0abcde" || r.Lat != 47.0 || r.Lon != 8.0 || r.Alt != 100 {
		t.Errorf("record = %+v", r)
	}
	if r.Flight != nil || r.Squawk != nil {
		t.Errorf("Flight, Squawk = %v, %v, want nil, nil", r.Flight, r.Squawk)
	}
}

func TestProcessFile_IdentityCarriesAcrossFrames(t *testing.T) {
	// Identity in frame 1, position only in frame 2: state is
	// file-scoped, so the call sign still attaches.
	path := writeFile(t, t.TempDir(), "0",
		EncodeFrameHeader(1000),
		mustIdentity(t, "4ca1d3", "BAW123  ", 1800),
		EncodeFrameHeader(1030),
		mustPosition(t, "4ca1d3", 47_000_000, 8_000_000),
	)

	got := testPipeline().ProcessFile(path)
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].Flight == nil || *got[0].Flight != "BAW123  " {
		t.Errorf("Flight = %v, want %q", got[0].Flight, "BAW123  ")
	}
	if got[0].Squawk == nil || *got[0].Squawk != "1800" {
		t.Errorf("Squawk = %v, want %q", got[0].Squawk, "1800")
	}
}

func TestProcessFile_Downsample(t *testing.T) {
	pos := mustPosition(t, "0abcde", 47_000_000, 8_000_000)
	path := writeFile(t, t.TempDir(), "0",
		EncodeFrameHeader(1000), pos,
		EncodeFrameHeader(1030), pos,
		EncodeFrameHeader(1061), pos,
	)

	got := testPipeline().ProcessFile(path)
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].T != 1000 || got[1].T != 1061 {
		t.Errorf("emitted at t = %v, %v, want 1000, 1061", got[0].T, got[1].T)
	}
}

func TestProcessFile_OutOfRangeDropped(t *testing.T) {
	path := writeFile(t, t.TempDir(), "0",
		EncodeFrameHeader(1000),
		mustPosition(t, "0abcde", 90_000_000, 8_000_000), // lat on the bound
		mustPosition(t, "0abcd1", 89_999_999, 8_000_000),
	)

	got := testPipeline().ProcessFile(path)
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].Hex != "0abcd1" {
		t.Errorf("Hex = %q, want %q", got[0].Hex, "0abcd1")
	}
}

func TestProcessFile_StateDoesNotLeakBetweenFiles(t *testing.T) {
	dir := t.TempDir()
	pipe := testPipeline()

	first := writeFile(t, dir, "0",
		EncodeFrameHeader(1000),
		mustIdentity(t, "4ca1d3", "BAW123  ", 1800),
		mustPosition(t, "4ca1d3", 47_000_000, 8_000_000),
	)
	second := writeFile(t, dir, "1",
		EncodeFrameHeader(1010),
		mustPosition(t, "4ca1d3", 47_100_000, 8_100_000),
	)

	if got := pipe.ProcessFile(first); len(got) != 1 || got[0].Flight == nil {
		t.Fatalf("first file: got %+v", got)
	}

	// Fresh state and a fresh down-sample gate for the second file:
	// the position emits despite being 10s after the first file's, and
	// carries no call sign.
	got := pipe.ProcessFile(second)
	if len(got) != 1 {
		t.Fatalf("second file: got %d records, want 1", len(got))
	}
	if got[0].Flight != nil || got[0].Squawk != nil {
		t.Errorf("second file: Flight, Squawk = %v, %v, want nil, nil", got[0].Flight, got[0].Squawk)
	}
}

func TestProcessFile_Deterministic(t *testing.T) {
	path := writeFile(t, t.TempDir(), "0",
		EncodeFrameHeader(1000),
		mustIdentity(t, "4ca1d3", "BAW123  ", 1800),
		mustPosition(t, "4ca1d3", 47_000_000, 8_000_000),
		mustPosition(t, "0abcde", 10_000_000, 20_000_000),
		EncodeFrameHeader(1070),
		mustPosition(t, "4ca1d3", 47_200_000, 8_200_000),
	)

	pipe := testPipeline()
	first := pipe.ProcessFile(path)
	second := pipe.ProcessFile(path)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("runs differ:\n%+v\n%+v", first, second)
	}
	if len(first) != 3 {
		t.Errorf("got %d records, want 3", len(first))
	}
}
