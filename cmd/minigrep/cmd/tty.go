package cmd

import (
	"io"
	"os"

	"github.com/corey/minigrep/internal/config"
	"github.com/mattn/go-isatty"
)

// isTerminal returns true if w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// resolveColor determines whether to highlight matches.
// colorFlag is the --color value: "auto", "always", or "never".
func resolveColor(colorFlag string, out io.Writer) bool {
	switch colorFlag {
	case config.ColorAlways:
		return true
	case config.ColorAuto:
		return isTerminal(out)
	default: // "never"
		return false
	}
}
