package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	c       *fakeClock
	at      time.Time
	f       func()
	stopped bool
}

func (ft *fakeTimer) Stop() bool {
	ft.c.mu.Lock()
	defer ft.c.mu.Unlock()
	was := !ft.stopped
	ft.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	ft := &fakeTimer{c: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, ft)
	return ft
}

func (c *fakeClock) pending() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

// advance moves time forward and fires due timers in order.
func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()
	for {
		c.mu.Lock()
		var due *fakeTimer
		for _, t := range c.timers {
			if !t.stopped && !t.at.After(target) && (due == nil || t.at.Before(due.at)) {
				due = t
			}
		}
		if due == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		due.stopped = true
		c.now = due.at
		c.mu.Unlock()
		due.f()
	}
}

func TestUntilNextMinute(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 30, 45, 500_000_000, time.UTC)
	assert.Equal(t, 14500*time.Millisecond, UntilNextMinute(base))
	assert.Equal(t, time.Minute, UntilNextMinute(base.Truncate(time.Minute)))
}

func TestTickerFiresOnMinuteBoundaries(t *testing.T) {
	c := &fakeClock{now: time.Date(2025, 6, 1, 23, 58, 20, 0, time.UTC)}
	tk := NewTicker(c)

	ch, unsub := tk.Subscribe()
	defer unsub()
	require.True(t, tk.Running())

	pending := c.pending()
	require.Len(t, pending, 1)
	assert.Equal(t, time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC), pending[0].at)

	c.advance(40 * time.Second)
	got := <-ch
	assert.Equal(t, time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC), got)

	c.advance(time.Minute)
	got = <-ch
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, got, tk.Current())
}

func TestTickerRefCounting(t *testing.T) {
	c := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 30, 0, time.UTC)}
	tk := NewTicker(c)
	assert.False(t, tk.Running())

	_, unsubA := tk.Subscribe()
	_, unsubB := tk.Subscribe()
	assert.Equal(t, 2, tk.Subscribers())
	assert.Len(t, c.pending(), 1, "one shared timer")

	unsubA()
	unsubA()
	assert.True(t, tk.Running())
	assert.Equal(t, 1, tk.Subscribers())

	unsubB()
	assert.False(t, tk.Running())
	assert.Empty(t, c.pending())

	// Resubscribing starts a fresh timer.
	_, unsubC := tk.Subscribe()
	defer unsubC()
	assert.True(t, tk.Running())
	assert.Len(t, c.pending(), 1)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	c := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	tk := NewTicker(c)
	ch, unsub := tk.Subscribe()
	defer unsub()

	c.advance(3 * time.Minute)
	assert.Len(t, ch, 1)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 3, 0, 0, time.UTC), tk.Current())
}
