// Package logging builds the debug logger. Output goes to a file only when
// TICKLIST_DEBUG=1, so the TUI never has log lines drawn over it.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

const (
	DebugEnv = "TICKLIST_DEBUG"
	LevelEnv = "TICKLIST_LOG_LEVEL"
	FileName = "debug.log"
)

// New returns a logger and a closer for its output. With debugging off the
// logger discards everything.
func New(dataDir string) (*log.Logger, io.Closer, error) {
	if os.Getenv(DebugEnv) != "1" {
		logger, closer := Discard()
		return logger, closer, nil
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dataDir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open debug log: %w", err)
	}

	level := log.DebugLevel
	if v := os.Getenv(LevelEnv); v != "" {
		if parsed, err := log.ParseLevel(v); err == nil {
			level = parsed
		}
	}

	return newLogger(f, level), f, nil
}

// Discard returns a logger that writes nowhere and a no-op closer
func Discard() (*log.Logger, io.Closer) {
	return newLogger(io.Discard, log.InfoLevel), nopCloser{}
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "ticklist",
		ReportTimestamp: true,
	})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
