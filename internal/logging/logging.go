// Package logging configures the process logger. Records are written as JSON
// to a size-rotated file, or discarded when no file is configured, since the
// interactive interface owns the terminal.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joeycumines/termcalc/internal/config"
)

// Options are the command-line overrides for logging. Empty fields defer to
// the config file, then to the schema defaults.
type Options struct {
	File  string
	Level string
}

// Logger is a configured logger and the file it writes to, if any.
type Logger struct {
	*slog.Logger
	Level slog.Level
	Path  string
	file  io.Closer
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel parses debug, info, warn or error (case-insensitive). The empty
// string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}

// Setup resolves the log destination and level (flag, then config and its
// environment overrides, then default) and builds the logger. cfg may be nil.
// The caller must Close the returned Logger.
func Setup(opts Options, cfg *config.Config) (*Logger, error) {
	schema := config.DefaultSchema()

	levelStr := opts.Level
	if levelStr == "" {
		levelStr = schema.Resolve(cfg, config.KeyLogLevel)
	}
	level, err := ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}

	path := opts.File
	if path == "" {
		path = schema.Resolve(cfg, config.KeyLogFile)
	}

	if path == "" {
		return &Logger{
			Logger: slog.New(slog.DiscardHandler),
			Level:  level,
		}, nil
	}

	w, err := NewRotatingFileWriter(path,
		schema.ResolveInt(cfg, config.KeyLogMaxSizeMB),
		schema.ResolveInt(cfg, config.KeyLogMaxFiles))
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})),
		Level:  level,
		Path:   path,
		file:   w,
	}, nil
}
