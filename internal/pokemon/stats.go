package pokemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"

	appLog "pogocal/internal/log"
)

// ErrNotFound is returned when no catchable form matches a name.
var ErrNotFound = errors.New("pokemon: not found")

// Species is one entry of the species data set.
type Species struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Form     string   `json:"form"`
	Types    []string `json:"types"`
	Stats    *Stats   `json:"stats"`
	Released bool     `json:"released,omitempty"`
	Shadow   bool     `json:"shadow,omitempty"`
	RaidTier int      `json:"raid_tier,omitempty"`
}

// FullName is the name plus the form unless the form is Normal.
func (s Species) FullName() string {
	if s.Form == "" || s.Form == "Normal" {
		return s.Name
	}
	return s.Name + " " + s.Form
}

// DefaultLoadCooldown is how long a failed load is reported without
// contacting upstream again.
const DefaultLoadCooldown = time.Minute

// StatsStore lazily loads the species data set once per process. Fetches are
// serialized; after a failure, callers get the recorded error until the
// cooldown has passed.
type StatsStore struct {
	url      string
	client   *http.Client
	attempts uint
	cooldown time.Duration
	now      func() time.Time

	loadMu sync.Mutex

	mu       sync.Mutex
	species  []Species
	loaded   bool
	lastErr  error
	failedAt time.Time
}

func NewStatsStore(url string, attempts int) *StatsStore {
	if attempts < 1 {
		attempts = 1
	}
	return &StatsStore{
		url:      url,
		client:   &http.Client{Timeout: 30 * time.Second},
		attempts: uint(attempts),
		cooldown: DefaultLoadCooldown,
		now:      time.Now,
	}
}

// Loaded reports whether the data set is available.
func (s *StatsStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Err returns the last load failure, if any.
func (s *StatsStore) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Load fetches the data set unless it is already loaded or the last failure
// is within the cooldown.
func (s *StatsStore) Load(ctx context.Context) error {
	if s.Loaded() {
		return nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	// Another caller may have finished a fetch while we waited.
	s.mu.Lock()
	loaded, lastErr, failedAt := s.loaded, s.lastErr, s.failedAt
	s.mu.Unlock()
	if loaded {
		return nil
	}
	if lastErr != nil && s.now().Sub(failedAt) < s.cooldown {
		return lastErr
	}

	var species []Species
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
			resp, err := s.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("species data: HTTP %d", resp.StatusCode)
			}
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(body, &species); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode species data: %w", err))
			}
			return nil
		},
		retry.Attempts(s.attempts),
		retry.Delay(time.Second),
		retry.MaxDelay(30*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			appLog.Warn("species data fetch failed, retrying", "attempt", n+1, "err", err)
		}),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		s.failedAt = s.now()
		appLog.Error("species data load failed", err)
		return err
	}

	s.species = species
	s.loaded = true
	s.lastErr = nil
	appLog.Info("species data loaded", "entries", len(species))
	return nil
}

// SetSpecies installs a data set directly.
func (s *StatsStore) SetSpecies(species []Species) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.species = species
	s.loaded = true
	s.lastErr = nil
}

// Catchable finds the form of name that can be encountered. Mega and Primal
// prefixes are dropped. An exact name+form match wins, then the Normal form
// of the base name, then any form of it.
func (s *StatsStore) Catchable(name string) (Species, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return Species{}, ErrNotFound
	}

	search := name
	switch {
	case strings.HasPrefix(search, "Mega "):
		search = strings.TrimPrefix(search, "Mega ")
	case strings.HasPrefix(search, "Primal "):
		search = strings.TrimPrefix(search, "Primal ")
	}
	norm := Normalize(search)
	clean := cleanName(search)

	matches := func(candidate string) bool {
		return Normalize(candidate) == norm || cleanName(candidate) == clean
	}

	for _, sp := range s.species {
		if matches(sp.FullName()) {
			return sp, nil
		}
	}
	for _, sp := range s.species {
		if sp.Form == "Normal" && matches(sp.Name) {
			return sp, nil
		}
	}
	for _, sp := range s.species {
		if matches(sp.Name) {
			return sp, nil
		}
	}
	return Species{}, ErrNotFound
}

// RaidCP loads the data set if needed and returns the raid CP for name.
func (s *StatsStore) RaidCP(ctx context.Context, name string) (RaidCP, error) {
	if err := s.Load(ctx); err != nil {
		return RaidCP{}, err
	}
	sp, err := s.Catchable(name)
	if err != nil {
		return RaidCP{}, err
	}
	if sp.Stats == nil {
		return RaidCP{}, fmt.Errorf("%w: %s has no stats", ErrNotFound, name)
	}
	return RaidCPOf(*sp.Stats), nil
}
