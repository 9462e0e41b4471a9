package pokemon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const speciesJSON = `[
	{"id": 380, "name": "Latias", "form": "Normal", "types": ["Dragon", "Psychic"], "stats": {"baseStamina": 190, "baseAttack": 228, "baseDefense": 246}},
	{"id": 380, "name": "Latias", "form": "S", "types": ["Dragon", "Psychic"], "stats": {"baseStamina": 190, "baseAttack": 1, "baseDefense": 1}},
	{"id": 487, "name": "Giratina", "form": "Altered", "stats": {"baseStamina": 284, "baseAttack": 187, "baseDefense": 225}},
	{"id": 487, "name": "Giratina", "form": "Origin", "stats": {"baseStamina": 284, "baseAttack": 225, "baseDefense": 187}},
	{"id": 83, "name": "Farfetch'd", "form": "Normal", "stats": {"baseStamina": 141, "baseAttack": 124, "baseDefense": 115}},
	{"id": 999, "name": "Statless", "form": "Normal"}
]`

func TestCP(t *testing.T) {
	latias := Stats{BaseStamina: 190, BaseAttack: 228, BaseDefense: 246}
	assert.Equal(t, RaidCP{Level20: 2006, Level25: 2507}, RaidCPOf(latias))
	assert.Equal(t, 10, CP(Stats{}, CPMLevel15, IVs{}), "minimum CP")
}

func TestCatchable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(speciesJSON))
	}))
	defer srv.Close()

	s := NewStatsStore(srv.URL, 1)
	require.NoError(t, s.Load(context.Background()))
	require.True(t, s.Loaded())

	sp, err := s.Catchable("Mega Latias")
	require.NoError(t, err)
	assert.Equal(t, "Normal", sp.Form, "normal form preferred over other forms")

	sp, err = s.Catchable("Giratina Origin")
	require.NoError(t, err)
	assert.Equal(t, "Origin", sp.Form)

	sp, err = s.Catchable("Giratina")
	require.NoError(t, err)
	assert.Equal(t, "Altered", sp.Form, "any form when no Normal exists")

	sp, err = s.Catchable("farfetchd")
	require.NoError(t, err)
	assert.Equal(t, 83, sp.ID)

	_, err = s.Catchable("Missingno")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.RaidCP(context.Background(), "Statless")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatsStoreLoadsOnceAndRetriesAfterCooldown(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(speciesJSON))
	}))
	defer srv.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewStatsStore(srv.URL, 1)
	s.now = func() time.Time { return now }

	require.Error(t, s.Load(context.Background()))
	assert.Error(t, s.Err())
	assert.False(t, s.Loaded())

	_, err := s.RaidCP(context.Background(), "Latias")
	require.Error(t, err, "failure is reported until the cooldown passes")
	assert.Equal(t, int32(1), calls.Load())

	now = now.Add(DefaultLoadCooldown)
	cp, err := s.RaidCP(context.Background(), "Latias")
	require.NoError(t, err)
	assert.Equal(t, 2006, cp.Level20)

	_, err = s.RaidCP(context.Background(), "Latias")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestStatsStoreConcurrentFailuresFetchOnce(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewStatsStore(srv.URL, 1)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.RaidCP(context.Background(), "Latias")
			assert.Error(t, err)
		}()
	}

	// Lookups that do not fetch stay responsive while a fetch is in flight.
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.False(t, s.Loaded())
	_, err := s.Catchable("Latias")
	assert.ErrorIs(t, err, ErrNotFound)

	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load(), "waiters reuse the recorded failure")
}
