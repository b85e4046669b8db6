package config

import (
	"os"
	"path/filepath"
)

// Paths holds the resolved locations under the ~/.minigrep/ directory.
type Paths struct {
	Root    string // ~/.minigrep/
	Config  string // ~/.minigrep/config.yaml
	History string // ~/.minigrep/history.db
	LogDir  string // ~/.minigrep/log/
	LogFile string // ~/.minigrep/log/minigrep.log
}

// NewPaths constructs all paths beneath base.
func NewPaths(base string) *Paths {
	root := filepath.Join(base, ".minigrep")
	return &Paths{
		Root:    root,
		Config:  filepath.Join(root, "config.yaml"),
		History: filepath.Join(root, "history.db"),
		LogDir:  filepath.Join(root, "log"),
		LogFile: filepath.Join(root, "log", "minigrep.log"),
	}
}

// DefaultPaths resolves paths under the user's home directory, falling
// back to the working directory when no home is set.
func DefaultPaths() *Paths {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home, _ = os.Getwd()
	}
	return NewPaths(home)
}

// EnsureDirs creates the directory structure.
func (p *Paths) EnsureDirs() error {
	for _, dir := range []string{p.Root, p.LogDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
