package cli

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/quill/internal/storage"
)

// RecordView is the JSON form of a stored record.
type RecordView struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// NewKeysCommand creates the keys command.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List stored record keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				keys, err := e.session.Adapter().List()
				if err != nil {
					return e.failFor(err)
				}
				if e.formatter.Format == "json" {
					return e.formatter.Success(keys)
				}
				return e.formatter.Success(strings.Join(keys, "\n"))
			})
		},
	}
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored under a key",
		Long: `Print the value stored under a key.

Expired records are reported as not found, matching what the stores see.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				rec, err := e.session.Adapter().Lookup(args[0])
				if err != nil {
					return e.failFor(err)
				}
				if e.formatter.Format == "json" {
					view := RecordView{Key: rec.Key, Value: rec.Value, CreatedAt: rec.CreatedAt.UTC()}
					if !rec.ExpiresAt.IsZero() {
						expires := rec.ExpiresAt.UTC()
						view.ExpiresAt = &expires
					}
					return e.formatter.Success(view)
				}
				return e.formatter.Success(string(rec.Value))
			})
		},
	}
}

// SetOptions holds flags for the set command.
type SetOptions struct {
	*RootOptions
	Expire time.Duration
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set <key> <json>",
		Short: "Store a JSON value under a key",
		Long: `Store a JSON value under a key.

Example:
  quill set scratch '{"note":"hello"}' --expire 1h`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts.RootOptions, cmd, func(e *env) error {
				value, err := storage.Canonicalize([]byte(args[1]))
				if err != nil {
					return e.failFor(&storage.OpError{Op: "set", Key: args[0], Code: storage.CodeSerialize, Err: err})
				}
				if err := e.session.Adapter().PutRaw(args[0], value, opts.Expire); err != nil {
					return e.failFor(err)
				}
				return e.formatter.Success("stored " + args[0])
			})
		},
	}

	cmd.Flags().DurationVar(&opts.Expire, "expire", 0, "expire the record after this long (0 = never)")

	return cmd
}

// NewRmCommand creates the rm command.
func NewRmCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <key>",
		Short: "Remove the record stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				if err := e.session.Adapter().Delete(args[0]); err != nil {
					return e.failFor(err)
				}
				return e.formatter.Success("removed " + args[0])
			})
		},
	}
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired and unreadable records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				removed, err := e.session.Adapter().Sweep()
				if err != nil {
					return e.failFor(err)
				}
				e.logger.Info("sweep finished", "removed", removed)
				return e.formatter.Success(map[string]int{"removed": removed})
			})
		},
	}
}
