// Package logging builds the process logger for the command line tool.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the log file.
const (
	MaxSizeMB  = 10
	MaxBackups = 3
	MaxAgeDays = 28
)

// ParseLevel maps "debug", "info", "warn" and "error" to a slog level.
// Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Setup creates a text logger writing to stderr and, when logFile is set, to
// a size-rotated file as well. Stdout is left to command output. The returned
// closer releases the file and is never nil.
func Setup(level, logFile string) (*slog.Logger, io.Closer, error) {
	return setup(os.Stderr, level, logFile)
}

func setup(console io.Writer, level, logFile string) (*slog.Logger, io.Closer, error) {
	lvl := ParseLevel(level)

	writer := console
	var closer io.Closer = nopCloser{}

	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}

		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    MaxSizeMB,
			MaxBackups: MaxBackups,
			MaxAge:     MaxAgeDays,
		}
		writer = io.MultiWriter(console, rotator)
		closer = rotator
	}

	logger := slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}))
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
