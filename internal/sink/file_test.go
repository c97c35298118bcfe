package sink

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"main/internal/model"
)

func testKline(symbol string, openTime int64) model.Kline {
	return model.NewKline("binance", symbol, uint64(openTime), uint64(openTime+899999),
		model.Interval15m, 1.5, 2.5, 1.0, 2.0, 42.5, 7)
}

func readSegment(t *testing.T, path string) []model.Kline {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open segment: %v", err)
	}
	defer file.Close()

	dec, err := zstd.NewReader(file)
	if err != nil {
		t.Fatalf("create decoder: %v", err)
	}
	defer dec.Close()

	var out []model.Kline
	scanner := bufio.NewScanner(dec)
	for scanner.Scan() {
		var k model.Kline
		if err := json.Unmarshal(scanner.Bytes(), &k); err != nil {
			t.Fatalf("decode record: %v", err)
		}
		out = append(out, k)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan segment: %v", err)
	}
	return out
}

func segmentFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "kline_*.zst"))
	if err != nil {
		t.Fatalf("glob segments: %v", err)
	}
	return matches
}

func TestFileBackendRoundTrip(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(FileConfig{Dir: dir, RotationInterval: 15 * time.Minute})
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}

	want := testKline("BTCUSDT", 1609459200000)
	if err := backend.Write(want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	files := segmentFiles(t, dir)
	if len(files) != 1 {
		t.Fatalf("expected one segment, got %v", files)
	}
	got := readSegment(t, files[0])
	if len(got) != 1 || !reflect.DeepEqual(got[0], want) {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, want)
	}
}

func TestFileBackendSameWindowSameSegment(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(FileConfig{Dir: dir, RotationInterval: 15 * time.Minute})
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	base := time.Date(2021, 1, 1, 0, 1, 0, 0, time.UTC)
	backend.now = func() time.Time { return base }

	if err := backend.Write(testKline("BTCUSDT", 1609459200000)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	backend.now = func() time.Time { return base.Add(5 * time.Minute) }
	if err := backend.Write(testKline("ETHUSDT", 1609459200000)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	files := segmentFiles(t, dir)
	if len(files) != 1 {
		t.Fatalf("expected one segment for one rotation window, got %v", files)
	}
	if got := readSegment(t, files[0]); len(got) != 2 {
		t.Fatalf("expected two records, got %d", len(got))
	}
}

func TestFileBackendRotatesAcrossWindows(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(FileConfig{Dir: dir, RotationInterval: 15 * time.Minute})
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	base := time.Date(2021, 1, 1, 0, 1, 0, 0, time.UTC)
	backend.now = func() time.Time { return base }

	if err := backend.Write(testKline("BTCUSDT", 1609459200000)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	backend.now = func() time.Time { return base.Add(16 * time.Minute) }
	if err := backend.Write(testKline("ETHUSDT", 1609460100000)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	files := segmentFiles(t, dir)
	if len(files) != 2 {
		t.Fatalf("expected two segments after crossing the boundary, got %v", files)
	}
	// The finalized first segment must decompress on its own.
	for _, f := range files {
		if got := readSegment(t, f); len(got) != 1 {
			t.Fatalf("expected one record in %s, got %d", f, len(got))
		}
	}
}

func TestFileBackendFlushKeepsSegmentReadable(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(FileConfig{Dir: dir, RotationInterval: time.Hour})
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}

	first := testKline("BTCUSDT", 1609459200000)
	if err := backend.Write(first); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := backend.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	// The flushed frame is already complete even though the backend stays open.
	files := segmentFiles(t, dir)
	if len(files) != 1 {
		t.Fatalf("expected one segment, got %v", files)
	}
	if got := readSegment(t, files[0]); len(got) != 1 || !reflect.DeepEqual(got[0], first) {
		t.Fatalf("unexpected flushed records: %+v", got)
	}

	// A second write lands in a new frame appended to the same file.
	if err := backend.Write(testKline("ETHUSDT", 1609459200000)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := readSegment(t, files[0]); len(got) != 2 {
		t.Fatalf("expected two records after the second frame, got %d", len(got))
	}
}
