package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestParseUTCConvertsToDisplayZone(t *testing.T) {
	ny := mustLoc(t, "America/New_York")

	got, err := Parse("2025-06-01T18:00:00.000Z", ny)
	require.NoError(t, err)
	assert.Equal(t, ny, got.Location())
	assert.Equal(t, 14, got.Hour())
	assert.Equal(t, time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC), got.UTC())
}

func TestParseLocalIsWallClock(t *testing.T) {
	tokyo := mustLoc(t, "Asia/Tokyo")

	for _, in := range []string{"2025-06-01T18:00:00.000", "2025-06-01T18:00:00", "2025-06-01T18:00"} {
		got, err := Parse(in, tokyo)
		require.NoError(t, err, in)
		assert.Equal(t, 18, got.Hour(), in)
		assert.Equal(t, tokyo, got.Location(), in)
	}
}

func TestParseOffset(t *testing.T) {
	got, err := Parse("2025-06-01T18:00:00+02:00", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 16, got.Hour())
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("", time.UTC)
	assert.Error(t, err)
	_, err = Parse("next tuesday", time.UTC)
	assert.Error(t, err)
}

func TestDaysBetweenAcrossDST(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	a := time.Date(2025, 3, 8, 12, 0, 0, 0, ny)
	b := time.Date(2025, 3, 10, 1, 0, 0, 0, ny)
	assert.Equal(t, 2, DaysBetween(a, b))
	assert.Equal(t, -2, DaysBetween(b, a))
}

func TestFormatRange(t *testing.T) {
	start := time.Date(2025, 8, 15, 14, 0, 0, 0, time.UTC)

	assert.Equal(t, "Aug 15 @ 2 PM - 5 PM", FormatRange(start, start.Add(3*time.Hour)))
	assert.Equal(t, "Aug 15 @ 2 PM - Aug 17 @ 5 PM", FormatRange(start, start.Add(51*time.Hour)))
}

func TestSameDayAndStartOfDay(t *testing.T) {
	a := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC)
	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(a, b.Add(time.Minute)))
	assert.Equal(t, a, StartOfDay(b))
}
