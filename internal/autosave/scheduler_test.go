package autosave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock hands out timers that fire only when the test advances time.
type fakeClock struct {
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	t := &fakeTimer{deadline: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// advance moves simulated time forward and fires due timers.
func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.deadline.After(c.now) {
			t.fired = true
			t.fn()
		}
	}
}

func TestFiresAfterQuietWindow(t *testing.T) {
	clock := newFakeClock()
	fires := 0
	s := New(clock, func() { fires++ })

	s.Touch()
	clock.advance(Debounce - time.Millisecond)
	assert.Equal(t, 0, fires, "must not fire before the window elapses")

	clock.advance(time.Millisecond)
	assert.Equal(t, 1, fires)
}

func TestTouchRestartsWindow(t *testing.T) {
	clock := newFakeClock()
	fires := 0
	s := New(clock, func() { fires++ })

	s.Touch()
	clock.advance(1500 * time.Millisecond)
	s.Touch()
	clock.advance(1500 * time.Millisecond)
	assert.Equal(t, 0, fires, "second touch must reset the window")

	clock.advance(500 * time.Millisecond)
	assert.Equal(t, 1, fires, "only one save despite two touches")
}

func TestDisabledIgnoresTouch(t *testing.T) {
	clock := newFakeClock()
	fires := 0
	s := New(clock, func() { fires++ })

	s.SetEnabled(false)
	s.Touch()
	clock.advance(2 * Debounce)
	assert.Equal(t, 0, fires)
}

func TestDisableCancelsPendingWindow(t *testing.T) {
	clock := newFakeClock()
	fires := 0
	s := New(clock, func() { fires++ })

	s.Touch()
	s.SetEnabled(false)
	clock.advance(2 * Debounce)
	assert.Equal(t, 0, fires)

	require.False(t, s.Enabled())
	s.SetEnabled(true)
	s.Touch()
	clock.advance(Debounce)
	assert.Equal(t, 1, fires, "re-enabling restores normal scheduling")
}

func TestStopCancelsPendingWindow(t *testing.T) {
	clock := newFakeClock()
	fires := 0
	s := New(clock, func() { fires++ })

	s.Touch()
	s.Stop()
	clock.advance(2 * Debounce)
	assert.Equal(t, 0, fires)
	assert.True(t, s.Enabled(), "Stop cancels the timer without disabling")
}

func TestLateCallbackFromSupersededWindow(t *testing.T) {
	clock := newFakeClock()
	fires := 0
	s := New(clock, func() { fires++ })

	s.Touch()
	require.Len(t, clock.timers, 1)
	t1 := clock.timers[0]
	// The first window has elapsed but its callback has not yet run, so
	// the Stop inside the next Touch reports false.
	t1.fired = true

	s.Touch()
	require.Len(t, clock.timers, 2)
	t2 := clock.timers[1]

	// The late callback runs after its window was replaced. It must not
	// save and must not detach the replacement window.
	t1.fn()
	assert.Equal(t, 0, fires, "superseded window must not fire")

	s.SetEnabled(false)
	assert.True(t, t2.stopped, "disable must cancel the replacement window")
	clock.advance(2 * Debounce)
	assert.Equal(t, 0, fires)
}

func TestSystemClockDefault(t *testing.T) {
	s := New(nil, func() {})
	assert.True(t, s.Enabled())
	s.Stop()
}
