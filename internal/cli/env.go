package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/quill/internal/config"
	"github.com/roach88/quill/internal/storage"
	"github.com/roach88/quill/internal/stores"
)

// env is what a command runs against: the resolved config, an open session
// over the configured backend and the output formatter.
type env struct {
	cfg       config.Config
	session   *stores.Session
	formatter *OutputFormatter
	logger    *slog.Logger
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// newLogger builds the text handler every command logs through. --verbose
// overrides the configured level.
func newLogger(w io.Writer, cfg config.Config, verbose bool) *slog.Logger {
	level := cfg.LogLevel
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openBackend opens the storage backend named by cfg.
func openBackend(cfg config.Config) (storage.Backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
		return storage.OpenSQLite(cfg.Path)
	case config.BackendFile:
		return storage.OpenFile(cfg.Path)
	case config.BackendMemory:
		return storage.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// withSession loads the config, opens the session, runs fn and closes the
// session, flushing any debounced writes fn scheduled.
func withSession(opts *RootOptions, cmd *cobra.Command, fn func(*env) error) (err error) {
	formatter := newFormatter(opts, cmd)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err)
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg, opts.Verbose)

	backend, err := openBackend(cfg)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBackend, err)
	}
	logger.Debug("backend opened", "backend", cfg.Backend, "path", cfg.Path, "config", cfg.Source)

	adapter := storage.NewAdapter(backend,
		storage.WithNamespace(cfg.Namespace),
		storage.WithLogger(logger),
	)
	session := stores.Open(adapter, stores.Options{
		Wait:        cfg.DebounceWait,
		DraftExpiry: cfg.DraftExpiry,
		Logger:      logger,
	})
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			logger.Error("closing session", "error", closeErr)
			if err == nil {
				err = WrapExitError(ExitCommandError, "closing session", closeErr)
			}
		}
	}()

	return fn(&env{
		cfg:       cfg,
		session:   session,
		formatter: formatter,
		logger:    logger,
	})
}

// failFor maps a store or storage error to an exit code and error code and
// reports it.
func (e *env) failFor(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, storage.ErrExpired),
		errors.Is(err, stores.ErrUnknownVolume),
		errors.Is(err, stores.ErrUnknownChapter):
		return e.formatter.Fail(ExitFailure, ErrCodeNotFound, err)
	case errors.Is(err, stores.ErrInvalidTheme),
		errors.Is(err, stores.ErrInvalidLanguage),
		errors.Is(err, stores.ErrInvalidFontSize),
		errors.Is(err, stores.ErrEmptyToken),
		errors.Is(err, stores.ErrEmptyNickname),
		errors.Is(err, stores.ErrNoNovel),
		errors.Is(err, stores.ErrNoVolume),
		errors.Is(err, stores.ErrNoChapter),
		storage.IsCode(err, storage.CodeSerialize):
		return e.formatter.Fail(ExitFailure, ErrCodeInvalid, err)
	case storage.IsCode(err, storage.CodeBackend),
		storage.IsCode(err, storage.CodeQuota),
		storage.IsCode(err, storage.CodeDeserialize):
		return e.formatter.Fail(ExitCommandError, ErrCodeBackend, err)
	default:
		return e.formatter.Fail(ExitFailure, ErrCodeGeneric, err)
	}
}
