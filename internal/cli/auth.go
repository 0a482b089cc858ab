package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/quill/internal/stores"
)

// AuthView is the printable auth session. The token itself is never printed.
type AuthView struct {
	Authenticated bool              `json:"authenticated"`
	SessionID     string            `json:"session_id,omitempty"`
	UserID        string            `json:"user_id,omitempty"`
	ExpiresAt     *time.Time        `json:"expires_at,omitempty"`
	Claims        map[string]string `json:"claims,omitempty"`
}

func authView(a *stores.Auth, now time.Time) AuthView {
	st := a.State()
	view := AuthView{
		Authenticated: a.IsAuthenticated(now),
		SessionID:     st.SessionID,
		UserID:        st.UserID,
	}
	if !st.ExpiresAt.IsZero() {
		view.ExpiresAt = &st.ExpiresAt
	}
	if len(st.Claims) > 0 {
		view.Claims = st.Claims
	}
	return view
}

// staticIssuer issues a token supplied on the command line. The real
// authentication provider lives outside this tool.
type staticIssuer struct {
	token tokenFlags
}

// tokenFlags is the subset of stores.Token settable from flags.
type tokenFlags struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	ExpiresIn    time.Duration
}

func (s staticIssuer) Issue(_ context.Context, creds stores.Credentials) (stores.Token, error) {
	tok := stores.Token{
		AccessToken:  s.token.AccessToken,
		RefreshToken: s.token.RefreshToken,
		UserID:       s.token.UserID,
	}
	if tok.UserID == "" {
		tok.UserID = creds.Username
	}
	if s.token.ExpiresIn > 0 {
		tok.ExpiresAt = time.Now().Add(s.token.ExpiresIn)
	}
	return tok, nil
}

// NewAuthCommand creates the auth command group.
func NewAuthCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Show or change the auth session",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the auth session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				return e.formatter.Success(authView(e.session.Auth, time.Now()))
			})
		},
	})

	var tok tokenFlags
	login := &cobra.Command{
		Use:   "login <username>",
		Short: "Store a token issued out of band",
		Long: `Store a token issued out of band and start a new session.

Example:
  quill auth login ana --token "$TOKEN" --expires-in 24h`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				sessionID, err := e.session.Auth.Login(cmd.Context(), staticIssuer{token: tok}, stores.Credentials{Username: args[0]})
				if err != nil {
					return e.failFor(err)
				}
				e.logger.Info("logged in", "user", args[0], "session", sessionID)
				return e.formatter.Success(authView(e.session.Auth, time.Now()))
			})
		},
	}
	login.Flags().StringVar(&tok.AccessToken, "token", "", "access token (required)")
	login.Flags().StringVar(&tok.RefreshToken, "refresh-token", "", "refresh token")
	login.Flags().StringVar(&tok.UserID, "user-id", "", "user id (defaults to the username)")
	login.Flags().DurationVar(&tok.ExpiresIn, "expires-in", 0, "token lifetime (0 = no expiry)")
	_ = login.MarkFlagRequired("token")
	cmd.AddCommand(login)

	cmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Forget the auth session only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				e.session.Auth.Logout()
				return e.formatter.Success("logged out")
			})
		},
	})

	return cmd
}

// NewLogoutCommand creates the session-wide logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the auth session, user profile and novel draft",
		Long: `Clear the auth session, then the user profile, then the novel draft.
App settings are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				e.session.Logout()
				return e.formatter.Success("logged out; profile and draft cleared")
			})
		},
	}
}
