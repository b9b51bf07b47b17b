package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesOnlyGivenFields(t *testing.T) {
	path := writeConfig(t, `
content: content/lucky
tick_rate: 30
seed: 42
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "content/lucky", cfg.Content)
	assert.Equal(t, 30, cfg.TickRate)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, Default().Ledger, cfg.Ledger)
	assert.Equal(t, Default().SaveDir, cfg.SaveDir)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "content: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, `
content: ""
tick_rate: 0
log:
  level: loud
`)
	_, err := Load(path)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	assert.Len(t, ve.Errors, 3)
	assert.Contains(t, err.Error(), "tick_rate")
	assert.Contains(t, err.Error(), `"loud"`)
}

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spin.log")
	logger, closer, err := NewLogger(LogConfig{Level: "info", File: path})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("spin accepted", "speed", 900)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, "spin accepted"))
	assert.True(t, strings.Contains(out, "speed=900"))
	assert.False(t, strings.Contains(out, "hidden"))
}

func TestNewLogger_UnknownLevel(t *testing.T) {
	_, _, err := NewLogger(LogConfig{Level: "verbose"})
	assert.Error(t, err)
}

func TestNewLogger_NoFileDiscards(t *testing.T) {
	logger, closer, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	logger.Info("nowhere")
	assert.NoError(t, closer.Close())
}
