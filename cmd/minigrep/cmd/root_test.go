package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/corey/minigrep/internal/adapters/bbolt"
	"github.com/corey/minigrep/internal/config"
	"github.com/corey/minigrep/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const poem = "Rust:\nsafe, fast, productive.\nPick three.\nTrust me.\n"

// testEnv returns an Env with captured output, an empty environment, and
// state under a temp home.
func testEnv(t *testing.T, kv map[string]string) (*Env, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	env := &Env{
		Stdout: &stdout,
		Stderr: &stderr,
		LookupEnv: func(key string) (string, bool) {
			v, ok := kv[key]
			return v, ok
		},
		Paths: config.NewPaths(t.TempDir()),
		OpenHistory: func(path string) (ports.History, error) {
			return bbolt.NewStore(path)
		},
	}
	return env, &stdout, &stderr
}

// writePoem writes the sample file and returns its path.
func writePoem(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "poem.txt")
	require.NoError(t, os.WriteFile(path, []byte(poem), 0644))
	return path
}

// =============================================================================
// Search
// =============================================================================

func TestRun_SensitiveMatch(t *testing.T) {
	env, stdout, stderr := testEnv(t, nil)
	code := run(context.Background(), []string{"safe", writePoem(t)}, env)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "safe, fast, productive.\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRun_SensitiveCaseMismatch(t *testing.T) {
	env, stdout, _ := testEnv(t, nil)
	code := run(context.Background(), []string{"RUST", writePoem(t)}, env)
	assert.Equal(t, exitOK, code, "zero matches is still success")
	assert.Empty(t, stdout.String())
}

func TestRun_InsensitiveFromEnv(t *testing.T) {
	env, stdout, _ := testEnv(t, map[string]string{config.CaseInsensitiveEnv: ""})
	code := run(context.Background(), []string{"RUST", writePoem(t)}, env)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "Rust:\nTrust me.\n", stdout.String())
}

func TestRun_InsensitiveFromFlag(t *testing.T) {
	env, stdout, _ := testEnv(t, nil)
	code := run(context.Background(), []string{"-i", "RUST", writePoem(t)}, env)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "Rust:\nTrust me.\n", stdout.String())
}

func TestRun_EmptyQueryPrintsEveryLine(t *testing.T) {
	env, stdout, _ := testEnv(t, nil)
	code := run(context.Background(), []string{"", writePoem(t)}, env)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, poem, stdout.String())
}

func TestRun_DashQueryAfterSeparator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.txt")
	require.NoError(t, os.WriteFile(path, []byte("use -i here\nnothing\n"), 0644))

	env, stdout, _ := testEnv(t, nil)
	code := run(context.Background(), []string{"--", "-i", path}, env)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "use -i here\n", stdout.String())
}

// =============================================================================
// Errors and exit codes
// =============================================================================

func TestRun_NotEnoughArguments(t *testing.T) {
	for _, args := range [][]string{{}, {"query"}} {
		env, stdout, stderr := testEnv(t, nil)
		code := run(context.Background(), args, env)
		assert.Equal(t, exitUsage, code)
		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), "not enough arguments")
	}
}

func TestRun_MissingFile(t *testing.T) {
	env, stdout, stderr := testEnv(t, nil)
	missing := filepath.Join(t.TempDir(), "nope.txt")
	code := run(context.Background(), []string{"safe", missing}, env)
	assert.Equal(t, exitError, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "nope.txt")
}

func TestRun_DirectoryIsReadError(t *testing.T) {
	env, _, stderr := testEnv(t, nil)
	code := run(context.Background(), []string{"safe", t.TempDir()}, env)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr.String(), "read ")
}

func TestRun_UnknownFlag(t *testing.T) {
	env, _, stderr := testEnv(t, nil)
	code := run(context.Background(), []string{"--bogus", "safe", writePoem(t)}, env)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr.String(), "bogus")
}

func TestRun_BadColor(t *testing.T) {
	env, _, stderr := testEnv(t, nil)
	code := run(context.Background(), []string{"--color", "rainbow", "safe", writePoem(t)}, env)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr.String(), "rainbow")
}

func TestRun_MalformedConfigFile(t *testing.T) {
	env, _, stderr := testEnv(t, nil)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("color: [oops"), 0644))

	code := run(context.Background(), []string{"--config", cfgPath, "safe", writePoem(t)}, env)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr.String(), "config")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, ExitCode(exitErr{code: 2}))
	assert.Equal(t, -1, ExitCode(assert.AnError))
	assert.Equal(t, "exit 1", exitErr{code: 1}.Error())
	assert.ErrorIs(t, exitErr{code: 2, err: config.ErrNotEnoughArguments}, config.ErrNotEnoughArguments)
}

// =============================================================================
// Color
// =============================================================================

func TestRun_ColorAlways(t *testing.T) {
	env, stdout, _ := testEnv(t, nil)
	code := run(context.Background(), []string{"--color", "always", "safe", writePoem(t)}, env)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, colorMatch+"safe"+colorReset+", fast, productive.\n", stdout.String())
}

func TestRun_ColorFromConfigFile(t *testing.T) {
	env, stdout, _ := testEnv(t, nil)
	require.NoError(t, env.Paths.EnsureDirs())
	require.NoError(t, os.WriteFile(env.Paths.Config, []byte("color: always\n"), 0644))

	code := run(context.Background(), []string{"safe", writePoem(t)}, env)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout.String(), colorMatch)

	// Flag beats file
	stdout.Reset()
	code = run(context.Background(), []string{"--color", "never", "safe", writePoem(t)}, env)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "safe, fast, productive.\n", stdout.String())
}

func TestRun_ColorAutoNotTerminal(t *testing.T) {
	env, stdout, _ := testEnv(t, nil)
	code := run(context.Background(), []string{"--color", "auto", "safe", writePoem(t)}, env)
	assert.Equal(t, exitOK, code)
	assert.NotContains(t, stdout.String(), colorMatch)
}

// =============================================================================
// Logging
// =============================================================================

func TestRun_LogToDefaultFile(t *testing.T) {
	env, _, stderr := testEnv(t, nil)
	require.NoError(t, env.Paths.EnsureDirs())
	require.NoError(t, os.WriteFile(env.Paths.Config, []byte("log_to_file: true\nlog_level: debug\n"), 0644))

	require.Equal(t, exitOK, run(context.Background(), []string{"--no-history", "safe", writePoem(t)}, env))

	data, err := os.ReadFile(env.Paths.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"search complete"`)
	assert.Contains(t, stderr.String(), "msg=\"search complete\"")
}

func TestRun_LogFileWinsOverDefault(t *testing.T) {
	env, _, _ := testEnv(t, nil)
	require.NoError(t, env.Paths.EnsureDirs())
	custom := filepath.Join(t.TempDir(), "custom.log")
	cfgYAML := "log_to_file: true\nlog_level: debug\nlog_file: " + custom + "\n"
	require.NoError(t, os.WriteFile(env.Paths.Config, []byte(cfgYAML), 0644))

	require.Equal(t, exitOK, run(context.Background(), []string{"--no-history", "safe", writePoem(t)}, env))

	assert.FileExists(t, custom)
	assert.NoFileExists(t, env.Paths.LogFile)
}

// =============================================================================
// History
// =============================================================================

func TestRun_RecordsHistory(t *testing.T) {
	env, stdout, _ := testEnv(t, map[string]string{config.CaseInsensitiveEnv: "1"})
	path := writePoem(t)
	require.Equal(t, exitOK, run(context.Background(), []string{"rust", path}, env))

	store, err := bbolt.NewStore(env.Paths.History)
	require.NoError(t, err)
	entries, err := store.Recent(0)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.Len(t, entries, 1)
	assert.Equal(t, "rust", entries[0].Query)
	assert.Equal(t, path, entries[0].Filename)
	assert.Equal(t, "insensitive", entries[0].Mode)
	assert.Equal(t, 2, entries[0].Matches)

	stdout.Reset()
	require.Equal(t, exitOK, run(context.Background(), []string{"--history"}, env))
	out := stdout.String()
	assert.Contains(t, out, "QUERY")
	assert.Contains(t, out, `"rust"`)
	assert.Contains(t, out, "insensitive")
}

func TestRun_HistoryUnknownMode(t *testing.T) {
	env, stdout, _ := testEnv(t, nil)
	require.NoError(t, env.Paths.EnsureDirs())
	store, err := bbolt.NewStore(env.Paths.History)
	require.NoError(t, err)
	require.NoError(t, store.Record(ports.HistoryEntry{
		Time:     time.Now(),
		Query:    "rust",
		Filename: "poem.txt",
		Mode:     "fuzzy",
		Matches:  1,
	}))
	require.NoError(t, store.Close())

	require.Equal(t, exitOK, run(context.Background(), []string{"--history"}, env))
	out := stdout.String()
	assert.Contains(t, out, "unknown")
	assert.NotContains(t, out, "fuzzy")
}

func TestRun_NoHistoryFlag(t *testing.T) {
	env, _, _ := testEnv(t, nil)
	require.Equal(t, exitOK, run(context.Background(), []string{"--no-history", "safe", writePoem(t)}, env))
	assert.NoFileExists(t, env.Paths.History)
}

func TestRun_HistoryEmpty(t *testing.T) {
	env, stdout, _ := testEnv(t, nil)
	require.Equal(t, exitOK, run(context.Background(), []string{"--history"}, env))
	assert.Equal(t, "no searches recorded\n", stdout.String())
}

func TestRun_ClearHistory(t *testing.T) {
	env, stdout, _ := testEnv(t, nil)
	path := writePoem(t)
	require.Equal(t, exitOK, run(context.Background(), []string{"safe", path}, env))
	require.Equal(t, exitOK, run(context.Background(), []string{"--clear-history"}, env))

	stdout.Reset()
	require.Equal(t, exitOK, run(context.Background(), []string{"--history"}, env))
	assert.Equal(t, "no searches recorded\n", stdout.String())
}

func TestRun_HistoryFailureDoesNotFailSearch(t *testing.T) {
	env, stdout, _ := testEnv(t, nil)
	env.OpenHistory = func(string) (ports.History, error) {
		return nil, assert.AnError
	}
	code := run(context.Background(), []string{"safe", writePoem(t)}, env)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "safe, fast, productive.\n", stdout.String())
}

// =============================================================================
// Watch
// =============================================================================

// fakeWatcher hands its callback to the test instead of watching the disk.
type fakeWatcher struct {
	registered chan func(string)
	stopped    chan struct{}
}

func (f *fakeWatcher) Watch(path string, onChange func(string)) error {
	f.registered <- onChange
	return nil
}

func (f *fakeWatcher) Stop() error {
	close(f.stopped)
	return nil
}

func TestRun_WatchRerunsOnChange(t *testing.T) {
	env, stdout, stderr := testEnv(t, nil)
	fw := &fakeWatcher{registered: make(chan func(string), 1), stopped: make(chan struct{})}
	env.NewWatcher = func() (ports.Watcher, error) { return fw, nil }

	path := writePoem(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, []string{"--watch", "--no-history", "Pick", path}, env)
	}()

	var onChange func(string)
	select {
	case onChange = <-fw.registered:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher was never registered")
	}

	require.NoError(t, os.WriteFile(path, []byte("Pick one.\nPick two.\n"), 0644))
	onChange(path)
	cancel()

	select {
	case code := <-done:
		assert.Equal(t, exitOK, code)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop on cancel")
	}
	<-fw.stopped

	assert.Equal(t, "Pick three.\nPick one.\nPick two.\n", stdout.String())
	assert.Contains(t, stderr.String(), "changed")
}
