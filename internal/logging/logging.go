// Package logging sets up diagnostics for minigrep. Logs go to stderr so
// stdout carries only search results; an optional log file rotates via
// lumberjack.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config contains logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// FilePath adds JSON logging to a rotating file. Empty means stderr only.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultConfig logs warnings and errors to stderr only.
func DefaultConfig() Config {
	return Config{
		Level:      "warn",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 30,
	}
}

// Setup builds a logger writing text to stderr and, when FilePath is set,
// JSON to a rotating file as well. The returned cleanup closes the file and is never nil.
func Setup(cfg Config, stderr io.Writer) (*slog.Logger, func(), error) {
	if stderr == nil {
		stderr = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: LevelFromString(cfg.Level)}

	if cfg.FilePath == "" {
		return slog.New(slog.NewTextHandler(stderr, opts)), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, nil, err
	}
	file := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	handler := teeHandler{
		slog.NewTextHandler(stderr, opts),
		slog.NewJSONHandler(file, opts),
	}
	cleanup := func() {
		_ = file.Close()
	}
	return slog.New(handler), cleanup, nil
}

// LevelFromString converts a level name to slog.Level. Unknown names map to warn.
func LevelFromString(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
