package harness

import (
	"fmt"
	"strconv"

	"github.com/roach88/quill/internal/stores"
)

// action applies one named store action to a session.
type action func(s *stores.Session, arg string) error

// actions is the vocabulary scenario steps can use.
var actions = map[string]action{
	"settings.theme":    func(s *stores.Session, arg string) error { return s.Settings.SetTheme(arg) },
	"settings.language": func(s *stores.Session, arg string) error { return s.Settings.SetLanguage(arg) },
	"settings.sidebar": func(s *stores.Session, _ string) error {
		s.Settings.ToggleSidebar()
		return nil
	},
	"settings.model": func(s *stores.Session, arg string) error {
		s.Settings.SetChatModel(arg)
		return nil
	},
	"settings.font_size": func(s *stores.Session, arg string) error {
		size, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: %q", stores.ErrInvalidFontSize, arg)
		}
		return s.Settings.SetEditorFontSize(size)
	},

	"auth.login": func(s *stores.Session, arg string) error {
		_, err := s.Auth.SetToken(stores.Token{AccessToken: arg, UserID: "user"})
		return err
	},
	"auth.logout": func(s *stores.Session, _ string) error {
		s.Auth.Logout()
		return nil
	},

	"profile.set": func(s *stores.Session, arg string) error {
		s.Profile.SetProfile(stores.ProfileInfo{UserID: arg, Nickname: arg})
		return nil
	},
	"profile.nickname": func(s *stores.Session, arg string) error { return s.Profile.SetNickname(arg) },
	"profile.chat": func(s *stores.Session, arg string) error {
		s.Profile.TouchChat(arg)
		return nil
	},
	"profile.quiz": func(s *stores.Session, arg string) error {
		s.Profile.RecordQuizAnswer(arg == "correct")
		return nil
	},
	"profile.clear": func(s *stores.Session, _ string) error {
		s.Profile.Clear()
		return nil
	},

	"novel.new": func(s *stores.Session, arg string) error {
		s.Novel.NewNovel(arg)
		return nil
	},
	"novel.add_volume": func(s *stores.Session, arg string) error {
		_, err := s.Novel.AddVolume(arg)
		return err
	},
	"novel.add_chapter": func(s *stores.Session, arg string) error {
		_, err := s.Novel.AddChapter(arg)
		return err
	},
	"novel.select_volume":  func(s *stores.Session, arg string) error { return s.Novel.SelectVolume(arg) },
	"novel.select_chapter": func(s *stores.Session, arg string) error { return s.Novel.SelectChapter(arg) },
	"novel.write":          func(s *stores.Session, arg string) error { return s.Novel.WriteDraft(arg) },
	"novel.discard": func(s *stores.Session, _ string) error {
		s.Novel.Discard()
		return nil
	},

	"session.logout": func(s *stores.Session, _ string) error {
		s.Logout()
		return nil
	},
	"session.flush": func(s *stores.Session, _ string) error {
		s.Flush()
		return nil
	},
}
