package stores

import (
	"slices"
	"strings"

	"github.com/roach88/quill/internal/persist"
	"github.com/roach88/quill/internal/storage"
)

// ProfileKey is the durable key of the user profile record.
const ProfileKey = "user-profile"

// MaxRecentChats caps ProfileState.RecentChats.
const MaxRecentChats = 20

// QuizStats counts quiz answers.
type QuizStats struct {
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}

// Accuracy is Correct/Answered, or 0 before the first answer.
func (q QuizStats) Accuracy() float64 {
	if q.Answered == 0 {
		return 0
	}
	return float64(q.Correct) / float64(q.Answered)
}

// ProfileInfo is the account data copied from the backend on login.
type ProfileInfo struct {
	UserID    string
	Nickname  string
	Email     string
	AvatarURL string
}

// ProfileState is the persisted user profile.
type ProfileState struct {
	UserID      string    `json:"user_id"`
	Nickname    string    `json:"nickname"`
	Email       string    `json:"email"`
	AvatarURL   string    `json:"avatar_url"`
	RecentChats []string  `json:"recent_chats"`
	Quiz        QuizStats `json:"quiz"`
}

// DefaultProfile is the anonymous profile.
func DefaultProfile() ProfileState {
	return ProfileState{RecentChats: []string{}}
}

// Profile is the user profile store.
type Profile struct {
	*persist.Store[ProfileState]
}

// NewProfile rehydrates the profile store from a.
func NewProfile(a *storage.Adapter, o Options) *Profile {
	o = o.withDefaults()
	return &Profile{
		Store: persist.New(ProfileKey, DefaultProfile, a, o.persistOptions()...),
	}
}

// SetProfile replaces the account fields. Recent chats and quiz stats are
// kept when the user id is unchanged and dropped otherwise.
func (p *Profile) SetProfile(info ProfileInfo) {
	p.Update(func(st *ProfileState) {
		if st.UserID != info.UserID {
			*st = DefaultProfile()
		}
		st.UserID = info.UserID
		st.Nickname = strings.TrimSpace(info.Nickname)
		st.Email = strings.TrimSpace(info.Email)
		st.AvatarURL = info.AvatarURL
	})
}

func (p *Profile) SetNickname(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyNickname
	}
	p.Update(func(st *ProfileState) { st.Nickname = name })
	return nil
}

// TouchChat moves chatID to the front of the recent chats list.
func (p *Profile) TouchChat(chatID string) {
	p.Update(func(st *ProfileState) {
		recent := slices.DeleteFunc(st.RecentChats, func(id string) bool { return id == chatID })
		recent = slices.Insert(recent, 0, chatID)
		if len(recent) > MaxRecentChats {
			recent = recent[:MaxRecentChats]
		}
		st.RecentChats = recent
	})
}

func (p *Profile) RecordQuizAnswer(correct bool) {
	p.Update(func(st *ProfileState) {
		st.Quiz.Answered++
		if correct {
			st.Quiz.Correct++
		}
	})
}

// Clear restores the anonymous profile and removes the record.
func (p *Profile) Clear() {
	p.Reset()
}
