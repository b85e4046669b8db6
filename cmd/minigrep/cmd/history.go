package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/corey/minigrep/internal/ports"
	"github.com/corey/minigrep/internal/search"
)

// runHistory lists or clears recorded searches.
func runHistory(env *Env, flags *rootFlags) error {
	if env.OpenHistory == nil || env.Paths == nil {
		err := fmt.Errorf("history is not available")
		fmt.Fprintf(env.Stderr, "minigrep: %v\n", err)
		return exitErr{exitError, err}
	}

	// Nothing recorded yet; don't create the database just to read it.
	if _, err := os.Stat(env.Paths.History); os.IsNotExist(err) {
		if flags.clearHistory {
			return nil
		}
		fmt.Fprintln(env.Stdout, "no searches recorded")
		return nil
	}

	h, err := env.OpenHistory(env.Paths.History)
	if err != nil {
		fmt.Fprintf(env.Stderr, "minigrep: %v\n", err)
		return exitErr{exitError, err}
	}
	defer h.Close()

	if flags.clearHistory {
		if err := h.Clear(); err != nil {
			fmt.Fprintf(env.Stderr, "minigrep: clear history: %v\n", err)
			return exitErr{exitError, err}
		}
		return nil
	}

	entries, err := h.Recent(flags.historyLimit)
	if err != nil {
		fmt.Fprintf(env.Stderr, "minigrep: %v\n", err)
		return exitErr{exitError, err}
	}
	if len(entries) == 0 {
		fmt.Fprintln(env.Stdout, "no searches recorded")
		return nil
	}
	return formatHistory(env, entries)
}

// formatHistory prints entries as an aligned table, newest first.
//
//	TIME                  MODE         MATCHES  QUERY  FILE
//	2026-01-02 03:04:05   insensitive  1        "rust" poem.txt
func formatHistory(env *Env, entries []ports.HistoryEntry) error {
	tw := tabwriter.NewWriter(env.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tMODE\tMATCHES\tQUERY\tFILE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%q\t%s\n",
			e.Time.Local().Format(time.DateTime), modeName(e.Mode), e.Matches, e.Query, e.Filename)
	}
	return tw.Flush()
}

// modeName normalizes a stored mode. Entries written by other versions may
// carry a value this build does not know.
func modeName(stored string) string {
	mode, err := search.ParseCaseMode(stored)
	if err != nil {
		return "unknown"
	}
	return mode.String()
}
