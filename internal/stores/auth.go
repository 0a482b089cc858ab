package stores

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/roach88/quill/internal/persist"
	"github.com/roach88/quill/internal/storage"
)

// AuthKey is the durable key of the auth session record.
const AuthKey = "auth"

// Credentials are handed to a TokenIssuer on login.
type Credentials struct {
	Username string
	Password string
}

// Token is what an authentication provider issues.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // zero means no expiry
	UserID       string
	Claims       map[string]string
}

// TokenIssuer is the external authentication provider.
type TokenIssuer interface {
	Issue(ctx context.Context, creds Credentials) (Token, error)
}

// AuthState is the persisted auth session.
type AuthState struct {
	Token        string            `json:"token"`
	RefreshToken string            `json:"refresh_token"`
	ExpiresAt    time.Time         `json:"expires_at"`
	SessionID    string            `json:"session_id"`
	UserID       string            `json:"user_id"`
	Claims       map[string]string `json:"claims"`
}

// DefaultAuth is the logged-out state.
func DefaultAuth() AuthState {
	return AuthState{Claims: map[string]string{}}
}

// Auth is the auth session store. Token changes are written immediately
// rather than debounced so a crash cannot lose a fresh login.
type Auth struct {
	*persist.Store[AuthState]
	newID func() string
}

// NewAuth rehydrates the auth store from a.
func NewAuth(a *storage.Adapter, o Options) *Auth {
	o = o.withDefaults()
	return &Auth{
		Store: persist.New(AuthKey, DefaultAuth, a, o.persistOptions()...),
		newID: o.NewID,
	}
}

// SetToken starts a new session for tok and returns its session id.
func (a *Auth) SetToken(tok Token) (string, error) {
	if tok.AccessToken == "" {
		return "", ErrEmptyToken
	}
	sessionID := a.newID()
	claims := maps.Clone(tok.Claims)
	if claims == nil {
		claims = map[string]string{}
	}
	a.UpdateNow(func(st *AuthState) {
		*st = AuthState{
			Token:        tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			ExpiresAt:    tok.ExpiresAt.UTC(),
			SessionID:    sessionID,
			UserID:       tok.UserID,
			Claims:       claims,
		}
	})
	return sessionID, nil
}

// Login obtains a token from issuer and stores it. The store is unchanged
// when the issuer fails.
func (a *Auth) Login(ctx context.Context, issuer TokenIssuer, creds Credentials) (string, error) {
	tok, err := issuer.Issue(ctx, creds)
	if err != nil {
		return "", fmt.Errorf("login %q: %w", creds.Username, err)
	}
	return a.SetToken(tok)
}

// Logout forgets the session in memory and in storage.
func (a *Auth) Logout() {
	a.Reset()
}

// IsAuthenticated reports whether a token is held and has not expired at now.
func (a *Auth) IsAuthenticated(now time.Time) bool {
	var ok bool
	a.View(func(st AuthState) {
		ok = st.Token != "" && (st.ExpiresAt.IsZero() || now.Before(st.ExpiresAt))
	})
	return ok
}

// Bearer returns the Authorization header value, or false when logged out.
func (a *Auth) Bearer() (string, bool) {
	var token string
	a.View(func(st AuthState) { token = st.Token })
	if token == "" {
		return "", false
	}
	return "Bearer " + token, true
}
