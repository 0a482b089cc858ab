package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/quill/internal/stores"
)

// NewProfileCommand creates the profile command group.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change the user profile",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the user profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				return e.formatter.Success(e.session.Profile.State())
			})
		},
	})

	var info stores.ProfileInfo
	set := &cobra.Command{
		Use:   "set",
		Short: "Replace the account fields",
		Long: `Replace the account fields. Recent chats and quiz stats are kept
when the user id is unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				e.session.Profile.SetProfile(info)
				return e.formatter.Success(e.session.Profile.State())
			})
		},
	}
	set.Flags().StringVar(&info.UserID, "user-id", "", "user id (required)")
	set.Flags().StringVar(&info.Nickname, "nickname", "", "display name")
	set.Flags().StringVar(&info.Email, "email", "", "email address")
	set.Flags().StringVar(&info.AvatarURL, "avatar", "", "avatar URL")
	_ = set.MarkFlagRequired("user-id")
	cmd.AddCommand(set)

	cmd.AddCommand(&cobra.Command{
		Use:   "nickname <name>",
		Short: "Change the display name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				if err := e.session.Profile.SetNickname(args[0]); err != nil {
					return e.failFor(err)
				}
				return e.formatter.Success(e.session.Profile.State())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "chat <chat-id>",
		Short: "Mark a chat as most recently used",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				e.session.Profile.TouchChat(args[0])
				return e.formatter.Success(e.session.Profile.State().RecentChats)
			})
		},
	})

	var correct bool
	quiz := &cobra.Command{
		Use:   "quiz",
		Short: "Record a quiz answer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				e.session.Profile.RecordQuizAnswer(correct)
				stats := e.session.Profile.State().Quiz
				return e.formatter.Success(map[string]any{
					"answered": stats.Answered,
					"correct":  stats.Correct,
					"accuracy": stats.Accuracy(),
				})
			})
		},
	}
	quiz.Flags().BoolVar(&correct, "correct", false, "the answer was correct")
	cmd.AddCommand(quiz)

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the user profile only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				e.session.Profile.Clear()
				return e.formatter.Success("profile cleared")
			})
		},
	})

	return cmd
}
