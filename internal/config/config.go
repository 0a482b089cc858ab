// Package config loads quill's configuration file.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Backend kinds.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

const (
	DefaultConfigPath   = "~/.config/quill/config.yaml"
	DefaultNamespace    = "quill:"
	DefaultDebounceWait = 300 * time.Millisecond

	defaultSQLitePath = "~/.local/share/quill/quill.db"
	defaultFileDir    = "~/.local/share/quill/records"
)

// ErrInvalid marks a config file that parsed but failed validation.
var ErrInvalid = errors.New("invalid config")

//go:embed config.cue
var schemaSource []byte

// Config is the resolved configuration.
type Config struct {
	Backend      string
	Path         string // absolute; empty for the memory backend
	Namespace    string
	DebounceWait time.Duration
	DraftExpiry  time.Duration // zero means drafts never expire
	LogLevel     slog.Level

	// Source is the file the config was read from, empty when defaults
	// were used because no file exists.
	Source string
}

// document is the on-disk shape shared by the YAML and TOML forms.
type document struct {
	Backend      string  `yaml:"backend" toml:"backend" json:"backend,omitempty"`
	Path         string  `yaml:"path" toml:"path" json:"path,omitempty"`
	Namespace    *string `yaml:"namespace" toml:"namespace" json:"namespace,omitempty"`
	DebounceWait string  `yaml:"debounce_wait" toml:"debounce_wait" json:"debounce_wait,omitempty"`
	DraftExpiry  string  `yaml:"draft_expiry" toml:"draft_expiry" json:"draft_expiry,omitempty"`
	LogLevel     string  `yaml:"log_level" toml:"log_level" json:"log_level,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Backend:      BackendSQLite,
		Path:         mustExpand(defaultSQLitePath),
		Namespace:    DefaultNamespace,
		DebounceWait: DefaultDebounceWait,
		LogLevel:     slog.LevelInfo,
	}
}

// Load reads the config at path, or at DefaultConfigPath when path is
// empty. A missing file yields Default(). Files ending in .toml are parsed
// as TOML, anything else as YAML.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	doc, err := parse(resolved, data)
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	if err := validate(doc); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalid, resolved, err)
	}

	cfg, err := resolve(doc)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalid, resolved, err)
	}
	cfg.Source = resolved
	return cfg, nil
}

func parse(path string, data []byte) (document, error) {
	var doc document
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return document{}, err
		}
		return doc, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return document{}, err
	}
	return doc, nil
}

// validate checks doc against the embedded CUE schema.
func validate(doc document) error {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSource, cue.Filename("config.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	value := ctx.CompileBytes(encoded)
	if err := value.Err(); err != nil {
		return err
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	return unified.Validate(cue.Concrete(true))
}

func resolve(doc document) (Config, error) {
	cfg := Default()

	if doc.Backend != "" {
		cfg.Backend = doc.Backend
	}
	switch {
	case doc.Path != "":
		expanded, err := expandPath(doc.Path)
		if err != nil {
			return Config{}, fmt.Errorf("path: %w", err)
		}
		cfg.Path = expanded
	case cfg.Backend == BackendFile:
		cfg.Path = mustExpand(defaultFileDir)
	case cfg.Backend == BackendMemory:
		cfg.Path = ""
	}

	if doc.Namespace != nil {
		cfg.Namespace = *doc.Namespace
	}
	if doc.DebounceWait != "" {
		wait, err := time.ParseDuration(doc.DebounceWait)
		if err != nil {
			return Config{}, fmt.Errorf("debounce_wait: %w", err)
		}
		cfg.DebounceWait = wait
	}
	if doc.DraftExpiry != "" {
		expiry, err := time.ParseDuration(doc.DraftExpiry)
		if err != nil {
			return Config{}, fmt.Errorf("draft_expiry: %w", err)
		}
		cfg.DraftExpiry = expiry
	}
	if doc.LogLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(doc.LogLevel)); err != nil {
			return Config{}, fmt.Errorf("log_level: %w", err)
		}
	}
	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(DefaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
