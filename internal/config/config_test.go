package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, DefaultNamespace, cfg.Namespace)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceWait)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.True(t, filepath.IsAbs(cfg.Path))
	assert.Equal(t, "quill.db", filepath.Base(cfg.Path))
	assert.Empty(t, cfg.Source)
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, "config.yaml", `
backend: file
path: `+dir+`
namespace: "test:"
debounce_wait: 50ms
draft_expiry: 72h
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, Config{
		Backend:      BackendFile,
		Path:         dir,
		Namespace:    "test:",
		DebounceWait: 50 * time.Millisecond,
		DraftExpiry:  72 * time.Hour,
		LogLevel:     slog.LevelDebug,
		Source:       path,
	}, cfg)
}

func TestLoad_ZeroDebounceWaitKept(t *testing.T) {
	path := writeConfig(t, "config.yaml", "debounce_wait: 0s\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.DebounceWait)
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
backend = "memory"
namespace = ""
log_level = "warn"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Empty(t, cfg.Path)
	assert.Empty(t, cfg.Namespace, "an explicit empty namespace is kept")
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, DefaultDebounceWait, cfg.DebounceWait)
}

func TestLoad_FileBackendDefaultPath(t *testing.T) {
	path := writeConfig(t, "config.yaml", "backend: file\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "records", filepath.Base(cfg.Path))
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeConfig(t, "config.yaml", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.Source = path
	assert.Equal(t, want, cfg)
}

func TestLoad_SchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown backend":   "backend: redis\n",
		"bad duration":      "debounce_wait: soon\n",
		"bare number":       "debounce_wait: 5\n",
		"negative duration": "draft_expiry: -1h\n",
		"bad log level":     "log_level: loud\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", content))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad_UnknownFieldsRejected(t *testing.T) {
	_, err := Load(writeConfig(t, "config.yaml", "colour: blue\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "config.toml", "colour = \"blue\"\n"))
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "config.yaml", "backend: [unclosed\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "parse config")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/quill/data")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "quill", "data"), got)

	_, err = expandPath("   ")
	assert.Error(t, err)
}
