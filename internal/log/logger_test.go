package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewDualLoggerWithWriters(t *testing.T) {
	t.Parallel()

	var stderr, file bytes.Buffer
	logger := NewDualLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("seed expanded", "seed", "bsky.app", "followers", 500)

	if !strings.Contains(stderr.String(), "seed expanded") {
		t.Errorf("stderr output missing message: %s", stderr.String())
	}

	var record map[string]any
	if err := json.Unmarshal(file.Bytes(), &record); err != nil {
		t.Fatalf("file output is not JSON: %v\n%s", err, file.String())
	}
	if record["msg"] != "seed expanded" {
		t.Errorf("JSON msg = %v, want %q", record["msg"], "seed expanded")
	}
	if record["seed"] != "bsky.app" {
		t.Errorf("JSON seed = %v, want %q", record["seed"], "bsky.app")
	}
}

func TestNewDualLoggerWithWriters_sanitizesBothSinks(t *testing.T) {
	t.Parallel()

	var stderr, file bytes.Buffer
	logger := NewDualLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("session created", "app_password", "abcd-efgh-ijkl-mnop")

	for name, out := range map[string]string{"stderr": stderr.String(), "file": file.String()} {
		if strings.Contains(out, "abcd-efgh-ijkl-mnop") {
			t.Errorf("app password leaked to %s: %s", name, out)
		}
		if !strings.Contains(out, MaskValue) {
			t.Errorf("%s output not masked: %s", name, out)
		}
	}
}

func TestNewDualLogger_fallsBackWithoutFile(t *testing.T) {
	t.Parallel()

	// A path inside a missing directory cannot be opened.
	badPath := filepath.Join(t.TempDir(), "missing", "botscan.log")

	logger, cleanup := NewDualLogger(badPath, false)
	defer cleanup() //nolint:errcheck

	if logger == nil {
		t.Fatal("NewDualLogger() = nil logger on file open failure")
	}
	// The fallback logger must still be usable.
	logger.Info("still alive")
}

func TestNewDualLogger_writesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "botscan.log")

	logger, cleanup := NewDualLogger(path, true)
	logger.Debug("verbose enabled")
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup() error = %v", err)
	}
}
