package stores

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/quill/internal/clock"
	"github.com/roach88/quill/internal/persist"
)

// Options are shared by every domain store.
type Options struct {
	// Wait is the debounce window between a mutation and its write-back.
	// Zero arms the write-back timer with no delay, so changes made before
	// it fires still share one write. Negative means persist.DefaultWait.
	Wait time.Duration

	// DraftExpiry, when positive, expires the novel draft record that long
	// after its last write.
	DraftExpiry time.Duration

	Clock  clock.Clock
	Logger *slog.Logger

	// NewID generates record ids. Defaults to UUIDv7 strings.
	NewID func() string
}

func (o Options) withDefaults() Options {
	if o.Wait < 0 {
		o.Wait = persist.DefaultWait
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.NewID == nil {
		o.NewID = newID
	}
	return o
}

func (o Options) persistOptions(extra ...persist.Option) []persist.Option {
	opts := []persist.Option{
		persist.WithWait(o.Wait),
		persist.WithClock(o.Clock),
		persist.WithLogger(o.Logger),
	}
	return append(opts, extra...)
}

// newID returns a time-ordered UUIDv7 string.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
