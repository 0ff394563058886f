// Package logging builds the slog logger. Output always goes to a file
// because the terminal belongs to the status view.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
)

// Options select where and how much to log.
type Options struct {
	Path    string
	Level   slog.Level
	Version string
}

// New opens (or creates) the log file and returns a logger writing to it.
// The returned Closer closes the file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	if opts.Path == "" {
		return nil, nil, fmt.Errorf("log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return NewWriter(file, opts), file, nil
}

// NewWriter returns a logger writing plain tint lines to w.
func NewWriter(w io.Writer, opts Options) *slog.Logger {
	h := tint.NewHandler(w, &tint.Options{
		Level:      opts.Level,
		TimeFormat: time.DateTime,
		NoColor:    true,
	})
	logger := slog.New(h).With("app", "glucobar")
	if opts.Version != "" {
		logger = logger.With("version", opts.Version)
	}
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
