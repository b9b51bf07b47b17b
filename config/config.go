// Package config loads runtime settings for the spinwheel binary from a
// YAML file. Flags given on the command line override file values.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of config.yaml.
type Config struct {
	Content  string    `yaml:"content"`
	SaveDir  string    `yaml:"save_dir"` // empty means ~/.spinwheel/saves
	Ledger   string    `yaml:"ledger"`   // empty disables the spin ledger
	TickRate int       `yaml:"tick_rate"`
	Seed     int64     `yaml:"seed"`
	Log      LogConfig `yaml:"log"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the settings used when no config file is present.
func Default() Config {
	return Config{
		Content:  "content/classic",
		Ledger:   "spinwheel.db",
		TickRate: 60,
		Log:      LogConfig{Level: "warn"},
	}
}

// ValidationError lists every problem found in a config.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Errors, "; ")
}

// Load reads a YAML config from path. Fields absent from the file keep
// their Default values. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports a *ValidationError if any field is out of range.
func (c Config) Validate() error {
	ve := &ValidationError{}
	if c.Content == "" {
		ve.Errors = append(ve.Errors, "content directory is required")
	}
	if c.TickRate < 1 || c.TickRate > 240 {
		ve.Errors = append(ve.Errors, fmt.Sprintf("tick_rate must be between 1 and 240, got %d", c.TickRate))
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf("unknown log level %q", c.Log.Level))
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// NewLogger builds the process logger. Output goes to Log.File when set,
// otherwise it is discarded so it never interleaves with the game text.
// The returned closer releases the log file.
func NewLogger(c LogConfig) (*slog.Logger, io.Closer, error) {
	level, ok := parseLevel(c.Level)
	if !ok {
		return nil, nil, fmt.Errorf("unknown log level %q", c.Level)
	}

	var w io.WriteCloser = nopCloser{io.Discard}
	if c.File != "" {
		f, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, w, nil
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return 0, false
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
