package log

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// NewDualLogger creates a dual-output logger: human-readable text to stderr
// and JSON to a file for machine parsing. Both outputs go through the
// sanitizing handler, so credentials are masked once for every sink.
// Returns the logger and a cleanup function that closes the file.
//
// If the log file cannot be opened the logger falls back to stderr-only
// rather than failing the run.
func NewDualLogger(logFile string, verbose bool) (*slog.Logger, func() error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		slog.Error("failed to open log file, using stderr only", "error", err, "file", logFile)
		return slog.New(NewSecureHandler(stderrHandler)), func() error { return nil }
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: level,
	})

	logger := slog.New(NewSecureHandler(slogmulti.Fanout(stderrHandler, fileHandler)))

	cleanup := func() error {
		return file.Close()
	}

	return logger, cleanup
}

// NewDualLoggerWithWriters creates a sanitizing dual-output logger with
// custom writers (for testing).
func NewDualLoggerWithWriters(stderr, file io.Writer, level slog.Level) *slog.Logger {
	stderrHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(NewSecureHandler(slogmulti.Fanout(stderrHandler, fileHandler)))
}
