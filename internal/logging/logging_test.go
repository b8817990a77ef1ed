package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestBuildJSON(t *testing.T) {
	var buf bytes.Buffer
	log := build(&buf, Config{Format: "json"}, zerolog.InfoLevel)

	log.Debug().Msg("hidden")
	log.Info().Str("stage", "joint").Msg("stage fitted")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["stage"] != "joint" || rec["message"] != "stage fitted" || rec["level"] != "info" {
		t.Fatalf("record = %v", rec)
	}
	if _, ok := rec["time"]; !ok {
		t.Fatal("record has no timestamp")
	}
}

func TestBuildConsole(t *testing.T) {
	var buf bytes.Buffer
	log := build(&buf, Config{Format: "console"}, zerolog.DebugLevel)
	log.Debug().Msg("break energy seeded")

	if !strings.Contains(buf.String(), "break energy seeded") {
		t.Fatalf("output = %q", buf.String())
	}
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Fatal("console format wrote JSON")
	}
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xspecfit.log")
	log, closer, err := New(Config{Level: "info", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info().Msg("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"message":"hello"`) {
		t.Fatalf("log file = %q", b)
	}
}

func TestNewBadLevel(t *testing.T) {
	if _, _, err := New(Config{Level: "loud"}); err == nil {
		t.Fatal("New accepted an unknown level")
	}
}
