package feed

import (
	"context"
	"sync"
	"time"

	appLog "pogocal/internal/log"
	"pogocal/internal/model"
)

// DefaultFreshness is how long a fetched feed is served without refetching.
const DefaultFreshness = 10 * time.Minute

// Snapshot is the last fetch outcome. Error is empty on success.
type Snapshot struct {
	Events    []model.Event `json:"events"`
	FetchedAt time.Time     `json:"fetched_at"`
	Error     string        `json:"error,omitempty"`
	FromCache bool          `json:"from_cache"`
}

// Source yields a raw feed body.
type Source interface {
	Fetch(ctx context.Context, url string) (FetchResult, error)
}

// Store owns the decoded feed. Refreshes are serialized; a caller arriving
// while another fetch runs waits and then reuses that result if it is fresh.
type Store struct {
	src       Source
	url       string
	loc       *time.Location
	freshness time.Duration
	now       func() time.Time

	fetchMu sync.Mutex

	mu   sync.RWMutex
	snap Snapshot
}

type StoreOption func(*Store)

// WithFreshness overrides DefaultFreshness.
func WithFreshness(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.freshness = d
		}
	}
}

// WithNow injects the clock used for freshness checks.
func WithNow(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(src Source, url string, loc *time.Location, opts ...StoreOption) *Store {
	if loc == nil {
		loc = time.Local
	}
	s := &Store{
		src:       src,
		url:       url,
		loc:       loc,
		freshness: DefaultFreshness,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Snapshot returns the current state without fetching.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Location is the display timezone events are decoded into.
func (s *Store) Location() *time.Location {
	return s.loc
}

func (s *Store) fresh() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.snap.FetchedAt.IsZero() && s.snap.Error == "" &&
		s.now().Sub(s.snap.FetchedAt) < s.freshness
}

// Refresh fetches the feed unless the stored snapshot is still fresh. force
// skips the freshness check. A failed fetch keeps the previous events and
// records the error.
func (s *Store) Refresh(ctx context.Context, force bool) Snapshot {
	if !force && s.fresh() {
		return s.Snapshot()
	}

	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	// Another caller may have refreshed while we waited.
	if !force && s.fresh() {
		return s.Snapshot()
	}

	snap := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Error != "" {
		snap.Events = s.snap.Events
	}
	s.snap = snap
	return s.snap
}

func (s *Store) load(ctx context.Context) Snapshot {
	now := s.now()
	res, err := s.src.Fetch(ctx, s.url)
	if err != nil {
		appLog.Error("feed refresh failed", err, "url", redactURL(s.url))
		return Snapshot{FetchedAt: now, Error: err.Error()}
	}

	events, err := Decode(res.Body, s.loc)
	if err != nil {
		appLog.Error("feed decode failed", err, "url", redactURL(s.url))
		return Snapshot{FetchedAt: now, Error: err.Error()}
	}
	events = append(events, ExpandAll(events)...)

	appLog.Info("feed refreshed", "events", len(events), "from_cache", res.FromCache)
	return Snapshot{Events: events, FetchedAt: now, FromCache: res.FromCache}
}

// Find returns the stored event with the given ID.
func (s *Store) Find(id string) (model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ev := range s.snap.Events {
		if ev.ID == id {
			return ev, true
		}
	}
	return model.Event{}, false
}
