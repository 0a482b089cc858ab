package stores

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/quill/internal/clock"
	"github.com/roach88/quill/internal/persist"
	"github.com/roach88/quill/internal/storage"
)

// NovelKey is the durable key of the novel draft record.
const NovelKey = "novel-draft"

type Chapter struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Draft     string    `json:"draft"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Volume struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Chapters []Chapter `json:"chapters"`
}

// NovelState is the persisted novel being drafted. At most one novel is in
// progress at a time.
type NovelState struct {
	NovelID         string   `json:"novel_id"`
	Title           string   `json:"title"`
	Volumes         []Volume `json:"volumes"`
	SelectedVolume  string   `json:"selected_volume"`
	SelectedChapter string   `json:"selected_chapter"`
}

// DefaultNovel is the empty draft.
func DefaultNovel() NovelState {
	return NovelState{Volumes: []Volume{}}
}

func (n *NovelState) volume(id string) *Volume {
	for i := range n.Volumes {
		if n.Volumes[i].ID == id {
			return &n.Volumes[i]
		}
	}
	return nil
}

func (v *Volume) chapter(id string) *Chapter {
	for i := range v.Chapters {
		if v.Chapters[i].ID == id {
			return &v.Chapters[i]
		}
	}
	return nil
}

// Selection returns the selected volume and chapter. Either may be nil.
func (n *NovelState) Selection() (*Volume, *Chapter) {
	vol := n.volume(n.SelectedVolume)
	if vol == nil {
		return nil, nil
	}
	return vol, vol.chapter(n.SelectedChapter)
}

// WordCount counts whitespace-separated words across every chapter draft.
func (n NovelState) WordCount() int {
	total := 0
	for _, vol := range n.Volumes {
		for _, ch := range vol.Chapters {
			total += len(strings.Fields(ch.Draft))
		}
	}
	return total
}

// Novel is the novel draft store. Mutations that depend on the current
// selection are validated and applied under one store lock, and a rejected
// mutation schedules no write.
type Novel struct {
	*persist.Store[NovelState]
	clock clock.Clock
	newID func() string
}

// NewNovel rehydrates the novel draft store from a. A positive
// o.DraftExpiry drops drafts left untouched for that long.
func NewNovel(a *storage.Adapter, o Options) *Novel {
	o = o.withDefaults()
	var extra []persist.Option
	if o.DraftExpiry > 0 {
		extra = append(extra, persist.WithExpire(o.DraftExpiry))
	}
	return &Novel{
		Store: persist.New(NovelKey, DefaultNovel, a, o.persistOptions(extra...)...),
		clock: o.Clock,
		newID: o.NewID,
	}
}

// NewNovel starts a fresh draft, replacing any draft in progress, and
// returns the novel id.
func (n *Novel) NewNovel(title string) string {
	id := n.newID()
	n.Update(func(st *NovelState) {
		*st = DefaultNovel()
		st.NovelID = id
		st.Title = strings.TrimSpace(title)
	})
	return id
}

// AddVolume appends a volume, selects it and returns its id.
func (n *Novel) AddVolume(title string) (string, error) {
	id := n.newID()
	err := n.TryUpdate(func(st *NovelState) error {
		if st.NovelID == "" {
			return ErrNoNovel
		}
		st.Volumes = append(st.Volumes, Volume{ID: id, Title: strings.TrimSpace(title), Chapters: []Chapter{}})
		st.SelectedVolume, st.SelectedChapter = id, ""
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (n *Novel) SelectVolume(id string) error {
	return n.TryUpdate(func(st *NovelState) error {
		if st.volume(id) == nil {
			return fmt.Errorf("%w: %q", ErrUnknownVolume, id)
		}
		if st.SelectedVolume != id {
			st.SelectedVolume, st.SelectedChapter = id, ""
		}
		return nil
	})
}

// AddChapter appends a chapter to the selected volume, selects it and
// returns its id.
func (n *Novel) AddChapter(title string) (string, error) {
	id := n.newID()
	now := n.clock.Now().UTC()
	err := n.TryUpdate(func(st *NovelState) error {
		vol, _ := st.Selection()
		if vol == nil {
			return ErrNoVolume
		}
		vol.Chapters = append(vol.Chapters, Chapter{ID: id, Title: strings.TrimSpace(title), UpdatedAt: now})
		st.SelectedChapter = id
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// SelectChapter selects a chapter of the selected volume.
func (n *Novel) SelectChapter(id string) error {
	return n.TryUpdate(func(st *NovelState) error {
		vol, _ := st.Selection()
		if vol == nil {
			return ErrNoVolume
		}
		if vol.chapter(id) == nil {
			return fmt.Errorf("%w: %q", ErrUnknownChapter, id)
		}
		st.SelectedChapter = id
		return nil
	})
}

// WriteDraft replaces the selected chapter's draft text.
func (n *Novel) WriteDraft(text string) error {
	now := n.clock.Now().UTC()
	return n.TryUpdate(func(st *NovelState) error {
		_, ch := st.Selection()
		if ch == nil {
			return ErrNoChapter
		}
		ch.Draft = text
		ch.UpdatedAt = now
		return nil
	})
}

// Discard drops the draft in memory and in storage.
func (n *Novel) Discard() {
	n.Reset()
}

// WordCount counts words across the whole draft.
func (n *Novel) WordCount() int {
	var count int
	n.View(func(st NovelState) { count = st.WordCount() })
	return count
}
