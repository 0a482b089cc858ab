package stores

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/quill/internal/storage"
	"github.com/roach88/quill/internal/testutil"
)

type harness struct {
	clk     *testutil.FakeClock
	backend *testutil.RecordingBackend
	adapter *storage.Adapter
	opts    Options
}

// newHarness wires stores to a fake clock, a recording backend and
// sequential ids ("id-1", "id-2", ...).
func newHarness() *harness {
	clk := testutil.NewFakeClock()
	backend := testutil.NewRecordingBackend()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	n := 0
	return &harness{
		clk:     clk,
		backend: backend,
		adapter: storage.NewAdapter(backend, storage.WithClock(clk), storage.WithLogger(logger)),
		opts: Options{
			Wait:   100 * time.Millisecond,
			Clock:  clk,
			Logger: logger,
			NewID: func() string {
				n++
				return fmt.Sprintf("id-%d", n)
			},
		},
	}
}
