// Package logging configures the slog handler used by the binaries.
package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
)

// Options controls where log records go
type Options struct {
	// File, when set, receives a rotated copy of every record
	File  string
	Level slog.Level
}

// ParseLevel maps debug/info/warn/error to a slog level. Unknown values
// fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds a text logger writing to stderr and, optionally, to a
// rotating file. It also becomes the slog default and the stdlib log
// output. The returned closer flushes the file logger.
func Setup(opts Options) (*slog.Logger, io.Closer) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		fileLogger := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		w = io.MultiWriter(os.Stderr, fileLogger)
		closer = fileLogger
	}

	logger := New(w, opts.Level)
	slog.SetDefault(logger)
	log.SetOutput(w)
	return logger, closer
}

// New returns a text logger on w
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
