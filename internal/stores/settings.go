package stores

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/roach88/quill/internal/persist"
	"github.com/roach88/quill/internal/storage"
)

// SettingsKey is the durable key of the app settings record.
const SettingsKey = "app-settings"

// Editor font size bounds, inclusive.
const (
	MinFontSize = 10
	MaxFontSize = 48
)

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ParseTheme validates s as a Theme.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q (want light, dark or system)", ErrInvalidTheme, s)
	}
}

// EditorSettings configures the novel editor.
type EditorSettings struct {
	FontSize   int     `json:"font_size"`
	LineHeight float64 `json:"line_height"`
	Autosave   bool    `json:"autosave"`
}

// SettingsState is the persisted app settings.
type SettingsState struct {
	Theme            Theme          `json:"theme"`
	Language         string         `json:"language"`
	SidebarCollapsed bool           `json:"sidebar_collapsed"`
	ChatModel        string         `json:"chat_model"`
	Editor           EditorSettings `json:"editor"`
}

// DefaultSettings returns the settings of a fresh install.
func DefaultSettings() SettingsState {
	return SettingsState{
		Theme:    ThemeSystem,
		Language: "en",
		Editor: EditorSettings{
			FontSize:   16,
			LineHeight: 1.6,
			Autosave:   true,
		},
	}
}

// Settings is the app settings store. Records are deep merged over the
// defaults so editor fields added later keep their defaults.
type Settings struct {
	*persist.Store[SettingsState]
}

// NewSettings rehydrates the settings store from a.
func NewSettings(a *storage.Adapter, o Options) *Settings {
	o = o.withDefaults()
	return &Settings{
		Store: persist.New(SettingsKey, DefaultSettings, a, o.persistOptions(persist.WithMerge(persist.DeepMerge))...),
	}
}

func (s *Settings) SetTheme(theme string) error {
	t, err := ParseTheme(theme)
	if err != nil {
		return err
	}
	s.Update(func(st *SettingsState) { st.Theme = t })
	return nil
}

// SetLanguage stores the canonical form of a BCP 47 tag ("EN-us" becomes "en-US").
func (s *Settings) SetLanguage(tag string) error {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidLanguage, tag, err)
	}
	s.Update(func(st *SettingsState) { st.Language = parsed.String() })
	return nil
}

// ToggleSidebar flips the sidebar and returns the new collapsed state.
func (s *Settings) ToggleSidebar() bool {
	var collapsed bool
	s.Update(func(st *SettingsState) {
		st.SidebarCollapsed = !st.SidebarCollapsed
		collapsed = st.SidebarCollapsed
	})
	return collapsed
}

// SetChatModel stores the chat model name as given; parsing it is the
// chat client's job.
func (s *Settings) SetChatModel(model string) {
	model = strings.TrimSpace(model)
	s.Update(func(st *SettingsState) { st.ChatModel = model })
}

func (s *Settings) SetEditorFontSize(size int) error {
	if size < MinFontSize || size > MaxFontSize {
		return fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidFontSize, size, MinFontSize, MaxFontSize)
	}
	s.Update(func(st *SettingsState) { st.Editor.FontSize = size })
	return nil
}

func (s *Settings) SetAutosave(on bool) {
	s.Update(func(st *SettingsState) { st.Editor.Autosave = on })
}
