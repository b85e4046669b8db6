// Package config turns process inputs into a search configuration.
// The environment is never read here directly: callers inject a lookup
// function (os.LookupEnv in production) so the mode flag is read once at
// startup and passed down as a value.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/corey/minigrep/internal/search"
	"gopkg.in/yaml.v3"
)

// CaseInsensitiveEnv selects case-insensitive mode when present, whatever its value.
const CaseInsensitiveEnv = "CASE_INSENSITIVE"

// ErrNotEnoughArguments is returned when the query or filename is missing.
var ErrNotEnoughArguments = errors.New("not enough arguments")

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Config holds everything one invocation needs.
type Config struct {
	Query    string
	Filename string
	Mode     search.CaseMode

	Color   string // auto, always, never
	Watch   bool
	History bool
}

// New builds a Config from positional args (program name already removed)
// and an environment lookup. Extra positional args are ignored.
func New(args []string, lookupEnv LookupFunc) (*Config, error) {
	if len(args) < 2 {
		return nil, ErrNotEnoughArguments
	}
	cfg := &Config{
		Query:    args[0],
		Filename: args[1],
		Mode:     search.Sensitive,
		Color:    ColorNever,
		History:  true,
	}
	if lookupEnv != nil {
		if _, ok := lookupEnv(CaseInsensitiveEnv); ok {
			cfg.Mode = search.Insensitive
		}
	}
	return cfg, nil
}

// Color settings.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// FileDefaults is the optional YAML defaults file.
//
//	color: auto
//	history: false
//	log_level: debug
//	log_file: /tmp/minigrep.log
//
// log_to_file: true logs to the default file under ~/.minigrep/log when
// log_file is not given.
type FileDefaults struct {
	Color     string `yaml:"color"`
	History   *bool  `yaml:"history"`
	LogLevel  string `yaml:"log_level"`
	LogFile   string `yaml:"log_file"`
	LogToFile bool   `yaml:"log_to_file"`
}

// LoadFile reads defaults from path. A missing file is not an error and
// yields empty defaults.
func LoadFile(path string) (*FileDefaults, error) {
	fd := &FileDefaults{}
	if path == "" {
		return fd, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fd, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, fd); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := validateColor(fd.Color); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fd, nil
}

// Apply copies file defaults into cfg. Flags applied afterwards win.
func (fd *FileDefaults) Apply(cfg *Config) {
	if fd == nil || cfg == nil {
		return
	}
	if fd.Color != "" {
		cfg.Color = fd.Color
	}
	if fd.History != nil {
		cfg.History = *fd.History
	}
}

// ValidateColor reports whether s is a known color setting.
func ValidateColor(s string) error {
	if s == "" {
		return fmt.Errorf("color must be one of auto, always, never")
	}
	return validateColor(s)
}

func validateColor(s string) error {
	switch s {
	case "", ColorAuto, ColorAlways, ColorNever:
		return nil
	}
	return fmt.Errorf("invalid color %q (want auto, always, never)", s)
}
