// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the log destination and level.
type Options struct {
	// File, when set, switches to JSON output written to stdout and to a
	// size-rotated file at this path.
	File  string
	Level slog.Level
}

// New returns a logger writing text to stdout, or JSON to stdout plus a
// rotating file when opts.File is set. The returned closer releases the file.
func New(opts Options) (*slog.Logger, io.Closer) {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	if opts.File == "" {
		return slog.New(slog.NewTextHandler(os.Stdout, handlerOpts)), nopCloser{}
	}

	rot := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	}
	w := io.MultiWriter(os.Stdout, rot)

	return slog.New(slog.NewJSONHandler(w, handlerOpts)).With("app", "checkoutrelay"), rot
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
