package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/corey/minigrep/internal/config"
	"github.com/corey/minigrep/internal/logging"
	"github.com/corey/minigrep/internal/ports"
	"github.com/corey/minigrep/internal/search"
	"github.com/spf13/cobra"
)

// runSearch is the default action: search one file and print the matches.
func runSearch(ctx context.Context, c *cobra.Command, env *Env, flags *rootFlags, args []string) error {
	// 1. Positional args + environment
	cfg, err := config.New(args, env.LookupEnv)
	if err != nil {
		fmt.Fprintf(env.Stderr, "minigrep: %v\nusage: %s\n", err, c.UseLine())
		return exitErr{exitUsage, err}
	}

	// 2. Defaults file, then flags on top
	defaults, err := config.LoadFile(configPath(env, flags))
	if err != nil {
		fmt.Fprintf(env.Stderr, "minigrep: %v\n", err)
		return exitErr{exitUsage, err}
	}
	defaults.Apply(cfg)
	if err := applyFlags(c, flags, cfg); err != nil {
		fmt.Fprintf(env.Stderr, "minigrep: %v\n", err)
		return exitErr{exitUsage, err}
	}

	logger, cleanup, err := setupLogger(env, flags, defaults)
	if err != nil {
		fmt.Fprintf(env.Stderr, "minigrep: %v\n", err)
		return exitErr{exitUsage, err}
	}
	defer cleanup()

	useColor := resolveColor(cfg.Color, env.Stdout)

	// 3. Search
	n, err := searchFile(cfg, env.Stdout, useColor, logger)
	if err != nil {
		fmt.Fprintf(env.Stderr, "minigrep: %v\n", err)
		return exitErr{exitError, err}
	}

	if cfg.History {
		recordHistory(env, logger, ports.HistoryEntry{
			Time:     time.Now(),
			Query:    cfg.Query,
			Filename: cfg.Filename,
			Mode:     cfg.Mode.String(),
			Matches:  n,
		})
	}

	// 4. Optional watch loop
	if cfg.Watch {
		return watchFile(ctx, env, cfg, useColor, logger)
	}
	return nil
}

// applyFlags copies explicitly set flags over cfg.
func applyFlags(c *cobra.Command, flags *rootFlags, cfg *config.Config) error {
	if flags.ignoreCase {
		cfg.Mode = search.Insensitive
	}
	if c.Flags().Changed("color") {
		if err := config.ValidateColor(flags.color); err != nil {
			return err
		}
		cfg.Color = flags.color
	}
	if flags.watch {
		cfg.Watch = true
	}
	if flags.noHistory {
		cfg.History = false
	}
	return nil
}

func configPath(env *Env, flags *rootFlags) string {
	if flags.configPath != "" {
		return flags.configPath
	}
	if env.Paths == nil {
		return ""
	}
	return env.Paths.Config
}

func setupLogger(env *Env, flags *rootFlags, defaults *config.FileDefaults) (*slog.Logger, func(), error) {
	lc := logging.DefaultConfig()
	if defaults.LogLevel != "" {
		lc.Level = defaults.LogLevel
	}
	if flags.verbose {
		lc.Level = "debug"
	}
	lc.FilePath = defaults.LogFile
	if lc.FilePath == "" && defaults.LogToFile && env.Paths != nil {
		lc.FilePath = env.Paths.LogFile
	}
	return logging.Setup(lc, env.Stderr)
}

// searchFile reads the whole file, searches it, and writes each match on
// its own line. Returns the number of matches.
func searchFile(cfg *config.Config, out io.Writer, useColor bool, logger *slog.Logger) (int, error) {
	body, err := readBody(cfg.Filename)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	matches := search.Search(cfg.Mode, cfg.Query, body)
	logger.Debug("search complete",
		"file", cfg.Filename,
		"mode", cfg.Mode.String(),
		"bytes", len(body),
		"matches", len(matches),
		"elapsed", time.Since(start))

	if err := writeMatches(out, matches, cfg.Query, cfg.Mode, useColor); err != nil {
		return len(matches), fmt.Errorf("write output: %w", err)
	}
	return len(matches), nil
}

// readBody loads the entire file into memory.
func readBody(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	return string(data), nil
}

// recordHistory stores the entry. Failures are logged, never fatal.
func recordHistory(env *Env, logger *slog.Logger, entry ports.HistoryEntry) {
	if env.OpenHistory == nil || env.Paths == nil {
		return
	}
	if err := env.Paths.EnsureDirs(); err != nil {
		logger.Warn("history unavailable", "err", err)
		return
	}
	h, err := env.OpenHistory(env.Paths.History)
	if err != nil {
		logger.Warn("history unavailable", "path", env.Paths.History, "err", err)
		return
	}
	defer h.Close()
	if err := h.Record(entry); err != nil {
		logger.Warn("history record failed", "err", err)
	}
}

// watchFile re-runs the search on every change until ctx is cancelled.
func watchFile(ctx context.Context, env *Env, cfg *config.Config, useColor bool, logger *slog.Logger) error {
	if env.NewWatcher == nil {
		return nil
	}
	w, err := env.NewWatcher()
	if err != nil {
		fmt.Fprintf(env.Stderr, "minigrep: watch: %v\n", err)
		return exitErr{exitError, err}
	}
	// Stop waits for an in-flight re-run, so output is complete on return.
	defer w.Stop()

	err = w.Watch(cfg.Filename, func(path string) {
		if ctx.Err() != nil {
			return
		}
		logger.Info("file changed", "file", path)
		fmt.Fprintf(env.Stderr, "minigrep: %s changed\n", cfg.Filename)
		if _, err := searchFile(cfg, env.Stdout, useColor, logger); err != nil {
			// The file may be mid-replace; keep watching.
			fmt.Fprintf(env.Stderr, "minigrep: %v\n", err)
		}
	})
	if err != nil {
		fmt.Fprintf(env.Stderr, "minigrep: watch: %v\n", err)
		return exitErr{exitError, err}
	}

	<-ctx.Done()
	return nil
}
