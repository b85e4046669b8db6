package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/corey/minigrep/internal/adapters/bbolt"
	"github.com/corey/minigrep/internal/adapters/fsnotify"
	"github.com/corey/minigrep/internal/config"
	"github.com/corey/minigrep/internal/ports"
	"github.com/spf13/cobra"
)

// Env carries process-wide inputs, read once at startup and passed down.
type Env struct {
	Stdout    io.Writer
	Stderr    io.Writer
	LookupEnv config.LookupFunc
	Paths     *config.Paths

	OpenHistory func(path string) (ports.History, error)
	NewWatcher  func() (ports.Watcher, error)
}

// DefaultEnv wires the real process environment and adapters.
func DefaultEnv() *Env {
	return &Env{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		LookupEnv: os.LookupEnv,
		Paths:     config.DefaultPaths(),
		OpenHistory: func(path string) (ports.History, error) {
			return bbolt.NewStore(path)
		},
		NewWatcher: func() (ports.Watcher, error) {
			return fsnotify.NewWatcher()
		},
	}
}

// rootFlags holds flag values for one command instance.
type rootFlags struct {
	ignoreCase   bool
	color        string
	watch        bool
	noHistory    bool
	verbose      bool
	configPath   string
	showHistory  bool
	historyLimit int
	clearHistory bool
}

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd(env *Env) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "minigrep [flags] <query> <filename>",
		Short: "Print the lines of a file that contain a query",
		Long: "Searches a file for lines containing <query> and prints them in order.\n" +
			"Set " + config.CaseInsensitiveEnv + " (any value) or pass -i to ignore case.",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(c *cobra.Command, args []string) error {
			if flags.showHistory || flags.clearHistory {
				return runHistory(env, flags)
			}
			return runSearch(c.Context(), c, env, flags, args)
		},
	}
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)

	f := root.Flags()
	f.BoolVarP(&flags.ignoreCase, "ignore-case", "i", false, "Case insensitive (same as setting "+config.CaseInsensitiveEnv+")")
	f.StringVar(&flags.color, "color", config.ColorNever, "Highlight matches: auto, always, never")
	f.BoolVar(&flags.watch, "watch", false, "Re-run the search each time the file changes")
	f.BoolVar(&flags.noHistory, "no-history", false, "Do not record this search")
	f.BoolVar(&flags.verbose, "verbose", false, "Debug logging to stderr")
	f.StringVar(&flags.configPath, "config", "", "Defaults file (default ~/.minigrep/config.yaml)")
	f.BoolVar(&flags.showHistory, "history", false, "List recent searches and exit")
	f.IntVar(&flags.historyLimit, "history-limit", 20, "Number of entries listed by --history (0 = all)")
	f.BoolVar(&flags.clearHistory, "clear-history", false, "Delete recorded searches and exit")

	return root
}

// Execute runs minigrep against the real process environment and returns
// the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], DefaultEnv())
}

// run executes the command tree with args and maps the result to an exit code.
func run(ctx context.Context, args []string, env *Env) int {
	root := newRootCmd(env)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	// Flag parsing errors come from cobra and have not been reported yet.
	if ExitCode(err) < 0 {
		fmt.Fprintf(env.Stderr, "minigrep: %v\n", err)
		return exitUsage
	}
	return ExitCode(err)
}
