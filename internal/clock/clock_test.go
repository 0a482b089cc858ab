package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReal_NowIsMonotonic(t *testing.T) {
	c := New()
	a := c.Now()
	b := c.Now()
	assert.False(t, b.Before(a))
}

func TestReal_AfterFuncFires(t *testing.T) {
	c := New()
	done := make(chan struct{})
	c.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("AfterFunc callback did not fire")
	}
}

func TestReal_StopPreventsCallback(t *testing.T) {
	c := New()
	fired := make(chan struct{}, 1)
	timer := c.AfterFunc(time.Hour, func() { fired <- struct{}{} })

	require.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second Stop reports already stopped")
	assert.Empty(t, fired)
}
