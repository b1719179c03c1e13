package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestJSONLZstdWriter_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "events")

	entries := []map[string]any{
		{"seq": 1, "type": "CRITTER_SPAWNED", "slot": 3},
		{"seq": 2, "type": "CRITTER_CAUGHT", "player": "p1"},
	}
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "events-*.jsonl.zst"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one log file, got %v (%v)", matches, err)
	}
	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var lines []string
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			lines = append(lines, sc.Text())
		}
	}
	if len(lines) != len(entries) {
		t.Fatalf("lines=%d want=%d", len(lines), len(entries))
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if first["type"] != "CRITTER_SPAWNED" {
		t.Fatalf("unexpected first line: %v", first)
	}
}
