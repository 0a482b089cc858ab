package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/quill/internal/stores"
)

// NewSettingsCommand creates the settings command group.
func NewSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change app settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				return e.formatter.Success(e.session.Settings.State())
			})
		},
	})

	cmd.AddCommand(settingsAction(rootOpts, "theme <light|dark|system>", "Set the colour theme", func(e *env, arg string) error {
		return e.session.Settings.SetTheme(arg)
	}))
	cmd.AddCommand(settingsAction(rootOpts, "language <tag>", "Set the UI language (BCP 47 tag)", func(e *env, arg string) error {
		return e.session.Settings.SetLanguage(arg)
	}))
	cmd.AddCommand(settingsAction(rootOpts, "model <name>", "Set the chat model", func(e *env, arg string) error {
		e.session.Settings.SetChatModel(arg)
		return nil
	}))
	cmd.AddCommand(settingsAction(rootOpts, "font-size <points>", "Set the editor font size", func(e *env, arg string) error {
		size, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", stores.ErrInvalidFontSize, arg)
		}
		return e.session.Settings.SetEditorFontSize(size)
	}))

	cmd.AddCommand(&cobra.Command{
		Use:   "sidebar",
		Short: "Toggle the sidebar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				collapsed := e.session.Settings.ToggleSidebar()
				return e.formatter.Success(map[string]bool{"sidebar_collapsed": collapsed})
			})
		},
	})

	return cmd
}

// settingsAction builds a one-argument settings subcommand that prints the
// updated settings on success.
func settingsAction(rootOpts *RootOptions, use, short string, apply func(*env, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				if err := apply(e, args[0]); err != nil {
					return e.failFor(err)
				}
				return e.formatter.Success(e.session.Settings.State())
			})
		},
	}
}
