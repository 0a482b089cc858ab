package stores

import (
	"errors"
	"fmt"

	"github.com/roach88/quill/internal/storage"
)

// Session holds the four domain stores over one adapter.
//
// Each store owns its own record; operations spanning stores are sequenced
// here and are not atomic across them.
type Session struct {
	Settings *Settings
	Auth     *Auth
	Profile  *Profile
	Novel    *Novel

	adapter *storage.Adapter
}

// Open rehydrates every domain store from a.
func Open(a *storage.Adapter, o Options) *Session {
	o = o.withDefaults()
	return &Session{
		Settings: NewSettings(a, o),
		Auth:     NewAuth(a, o),
		Profile:  NewProfile(a, o),
		Novel:    NewNovel(a, o),
		adapter:  a,
	}
}

// Adapter returns the shared storage adapter.
func (s *Session) Adapter() *storage.Adapter {
	return s.adapter
}

// Logout clears the auth session, then the user profile, then the novel
// draft. Settings survive a logout.
func (s *Session) Logout() {
	s.Auth.Logout()
	s.Profile.Clear()
	s.Novel.Discard()
}

// Flush writes every store's pending state now.
func (s *Session) Flush() {
	s.Settings.Flush()
	s.Auth.Flush()
	s.Profile.Flush()
	s.Novel.Flush()
}

// Close flushes every store and closes the storage backend.
func (s *Session) Close() error {
	var errs []error
	for _, c := range []interface{ Close() error }{s.Settings, s.Auth, s.Profile, s.Novel} {
		errs = append(errs, c.Close())
	}
	if err := s.adapter.Backend().Close(); err != nil {
		errs = append(errs, fmt.Errorf("close backend: %w", err))
	}
	return errors.Join(errs...)
}
