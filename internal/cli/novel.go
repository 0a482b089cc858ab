package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/quill/internal/stores"
)

// NovelView is the printable novel draft. Drafts are summarized by word
// count; use --format json with "get novel-draft" for the full text.
type NovelView struct {
	NovelID         string       `json:"novel_id"`
	Title           string       `json:"title"`
	SelectedVolume  string       `json:"selected_volume,omitempty"`
	SelectedChapter string       `json:"selected_chapter,omitempty"`
	Words           int          `json:"words"`
	Volumes         []VolumeView `json:"volumes"`
}

type VolumeView struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Chapters []ChapterView `json:"chapters"`
}

type ChapterView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Words int    `json:"words"`
}

func novelView(st stores.NovelState) NovelView {
	view := NovelView{
		NovelID:         st.NovelID,
		Title:           st.Title,
		SelectedVolume:  st.SelectedVolume,
		SelectedChapter: st.SelectedChapter,
		Words:           st.WordCount(),
		Volumes:         make([]VolumeView, 0, len(st.Volumes)),
	}
	for _, vol := range st.Volumes {
		vv := VolumeView{ID: vol.ID, Title: vol.Title, Chapters: make([]ChapterView, 0, len(vol.Chapters))}
		for _, ch := range vol.Chapters {
			vv.Chapters = append(vv.Chapters, ChapterView{ID: ch.ID, Title: ch.Title, Words: len(strings.Fields(ch.Draft))})
		}
		view.Volumes = append(view.Volumes, vv)
	}
	return view
}

// NewNovelCommand creates the novel command group.
func NewNovelCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "novel",
		Short: "Work on the novel draft",
		Long: `Work on the novel draft.

Example:
  quill novel new "The Long Road"
  quill novel add-volume "Part One"
  quill novel add-chapter "Arrival"
  echo "It was late." | quill novel write -`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the draft outline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				return e.formatter.Success(novelView(e.session.Novel.State()))
			})
		},
	})

	cmd.AddCommand(novelAction(rootOpts, "new <title>", "Start a new draft, replacing the current one", func(n *stores.Novel, arg string) (string, error) {
		return n.NewNovel(arg), nil
	}))
	cmd.AddCommand(novelAction(rootOpts, "add-volume <title>", "Append a volume and select it", (*stores.Novel).AddVolume))
	cmd.AddCommand(novelAction(rootOpts, "select-volume <id>", "Select a volume", func(n *stores.Novel, id string) (string, error) {
		return id, n.SelectVolume(id)
	}))
	cmd.AddCommand(novelAction(rootOpts, "add-chapter <title>", "Append a chapter to the selected volume and select it", (*stores.Novel).AddChapter))
	cmd.AddCommand(novelAction(rootOpts, "select-chapter <id>", "Select a chapter of the selected volume", func(n *stores.Novel, id string) (string, error) {
		return id, n.SelectChapter(id)
	}))

	cmd.AddCommand(&cobra.Command{
		Use:   "write <text|->",
		Short: "Replace the selected chapter's draft (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				text := args[0]
				if text == "-" {
					data, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return e.failFor(err)
					}
					text = string(data)
				}
				if err := e.session.Novel.WriteDraft(text); err != nil {
					return e.failFor(err)
				}
				return e.formatter.Success(map[string]int{"words": e.session.Novel.WordCount()})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "discard",
		Short: "Drop the draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				e.session.Novel.Discard()
				return e.formatter.Success("draft discarded")
			})
		},
	})

	return cmd
}

// novelAction builds a one-argument novel subcommand that prints the id
// apply returns.
func novelAction(rootOpts *RootOptions, use, short string, apply func(*stores.Novel, string) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(e *env) error {
				id, err := apply(e.session.Novel, args[0])
				if err != nil {
					return e.failFor(err)
				}
				return e.formatter.Success(id)
			})
		},
	}
}
