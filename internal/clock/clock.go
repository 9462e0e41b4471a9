// Package clock provides an injectable time source and a shared ticker that
// fires on wall-clock minute boundaries.
package clock

import (
	"sync"
	"time"
)

// Timer is the subset of *time.Timer the ticker needs.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so the ticker can be driven by tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Real is the system clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// UntilNextMinute is the delay from t to the next whole minute.
func UntilNextMinute(t time.Time) time.Duration {
	next := t.Truncate(time.Minute).Add(time.Minute)
	return next.Sub(t)
}

// Ticker publishes the current minute to subscribers. The underlying timer
// runs only while at least one subscriber exists and is re-armed after each
// tick for the next minute boundary, so ticks stay aligned to the wall clock.
type Ticker struct {
	clock Clock

	mu      sync.Mutex
	subs    map[int]chan time.Time
	nextID  int
	timer   Timer
	current time.Time
	gen     int
}

func NewTicker(c Clock) *Ticker {
	if c == nil {
		c = Real{}
	}
	return &Ticker{
		clock:   c,
		subs:    make(map[int]chan time.Time),
		current: c.Now(),
	}
}

// Subscribe registers a listener. The returned channel receives the time of
// each tick; slow readers miss ticks rather than block the ticker. Call the
// returned function to unsubscribe; it is safe to call more than once.
func (t *Ticker) Subscribe() (<-chan time.Time, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	ch := make(chan time.Time, 1)
	t.subs[id] = ch
	if len(t.subs) == 1 {
		t.current = t.clock.Now()
		t.arm()
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() { t.unsubscribe(id) })
	}
}

func (t *Ticker) unsubscribe(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch, ok := t.subs[id]
	if !ok {
		return
	}
	delete(t.subs, id)
	close(ch)
	if len(t.subs) == 0 && t.timer != nil {
		t.timer.Stop()
		t.timer = nil
		t.gen++
	}
}

// Subscribers is the number of active listeners.
func (t *Ticker) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Running reports whether the minute timer is armed.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// arm schedules the next tick. Callers hold t.mu.
func (t *Ticker) arm() {
	gen := t.gen
	t.timer = t.clock.AfterFunc(UntilNextMinute(t.clock.Now()), func() { t.tick(gen) })
}

func (t *Ticker) tick(gen int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	// A stale timer from before the last stop must not re-arm.
	if gen != t.gen || len(t.subs) == 0 {
		return
	}
	now := t.clock.Now()
	t.current = now
	for _, ch := range t.subs {
		select {
		case ch <- now:
		default:
		}
	}
	t.arm()
}

// Current is the time of the most recent tick, or of the first
// subscription when no tick has fired yet.
func (t *Ticker) Current() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}
