package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pogocal/internal/feed"
	"pogocal/internal/layout"
	"pogocal/internal/model"
	"pogocal/internal/pokemon"
	"pogocal/internal/prefs"
)

type fakeSource struct {
	snap   feed.Snapshot
	forced int
}

func (f *fakeSource) Refresh(_ context.Context, force bool) feed.Snapshot {
	if force {
		f.forced++
	}
	return f.snap
}

func (f *fakeSource) Location() *time.Location { return time.UTC }

type fakeStats map[string]pokemon.RaidCP

func (f fakeStats) RaidCP(_ context.Context, name string) (pokemon.RaidCP, error) {
	cp, ok := f[name]
	if !ok {
		return pokemon.RaidCP{}, pokemon.ErrNotFound
	}
	return cp, nil
}

func at(day, hour int) time.Time {
	return time.Date(2025, 6, day, hour, 0, 0, 0, time.UTC)
}

func june() []model.Event {
	return []model.Event{
		{ID: "lugia-1", Name: "Lugia Raid Hour", Type: "raid-hour", Start: at(4, 18), End: at(4, 19)},
		{ID: "lugia-2", Name: "Lugia Raid Hour", Type: "raid-hour", Start: at(4, 18), End: at(4, 19)},
		{ID: "cd", Name: "Pok&eacute;mon GO Community Day", Type: "community-day", Start: at(4, 14), End: at(4, 17)},
		{ID: "fest", Name: "Summer Event", Type: "event", Start: at(6, 10), End: at(10, 20)},
		{ID: "hidden", Name: "Hidden Hour", Type: "bonus-hour", Start: at(12, 18), End: at(12, 19)},
		{ID: "research", Name: "Some Research", Type: "research", Start: at(13, 0), End: at(13, 23)},
		{ID: "july", Name: "Next Month", Type: "event", Start: time.Date(2025, 7, 5, 10, 0, 0, 0, time.UTC), End: time.Date(2025, 7, 5, 12, 0, 0, 0, time.UTC)},
		{
			ID: "raids", Name: "Shadow Raikou in Shadow Raids", Type: "raid-battles", Start: at(20, 10), End: at(20, 22),
			Extra: model.ExtraData{RaidBattles: &model.RaidBattles{Bosses: []model.Boss{{Name: "Shadow Raikou", CanBeShiny: true}, {Name: "Missingno"}}}},
		},
	}
}

func newTestService(events []model.Event) (*Service, *fakeSource) {
	src := &fakeSource{snap: feed.Snapshot{Events: events, FetchedAt: at(1, 0)}}
	now := func() time.Time { return at(4, 18).Add(30*time.Minute + 15*time.Second) }
	svc := NewService(src,
		WithNow(now),
		WithStats(fakeStats{"Shadow Raikou": {Level20: 1972, Level25: 2465}}),
	)
	return svc, src
}

func testSettings() prefs.Settings {
	st := prefs.Defaults(nil)
	st.DisableType("research")
	st.Hide("hidden")
	return st
}

func TestMonthView(t *testing.T) {
	svc, _ := newTestService(june())
	view, err := svc.Month(context.Background(), 2025, time.June, testSettings())
	require.NoError(t, err)

	assert.Equal(t, "June 2025", view.Title)
	assert.Equal(t, "Sunday", view.FirstDay)
	assert.Equal(t, []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}, view.DayHeaders)
	assert.Equal(t, 5, view.Weeks)
	require.Len(t, view.Days, 35)
	assert.Equal(t, "2025-06-01", view.Days[0].Date)

	day4 := view.Days[3]
	assert.Equal(t, "2025-06-04", day4.Date)
	assert.True(t, day4.Today)
	assert.True(t, day4.InMonth)
	require.Len(t, day4.Items, 2)

	// Community day outranks raid hour.
	cd := day4.Items[0]
	assert.Equal(t, "GO Community Day", cd.Name)
	assert.True(t, cd.Past)

	raid := day4.Items[1]
	assert.True(t, raid.Grouped)
	assert.Equal(t, 2, raid.Count)
	assert.Equal(t, "Lugia Raid Hour", raid.Name)
	assert.Equal(t, []string{"lugia-1", "lugia-2"}, raid.MemberIDs)
	assert.True(t, raid.Live)
	require.NotEmpty(t, raid.Images)
	assert.Equal(t, "Lugia", raid.Images[0].Name)

	day20 := view.Days[19]
	require.Len(t, day20.Items, 1)
	assert.Equal(t, "shadow-raids", day20.Items[0].SubType)
	assert.Equal(t, "Shadow Raids", day20.Items[0].TypeName)

	for _, d := range view.Days {
		for _, it := range d.Items {
			assert.NotEqual(t, "hidden", it.ID)
			assert.NotEqual(t, "research", it.ID)
			assert.NotEqual(t, "july", it.ID)
		}
	}

	require.Len(t, view.Bars, 1)
	bar := view.Bars[0]
	assert.Equal(t, "fest", bar.ID)
	assert.Equal(t, layout.Placement{StartColumn: 5, Row: 0, SpanColumns: 5}, bar.Placement)
	assert.Equal(t, []layout.Placement{
		{StartColumn: 5, Row: 0, SpanColumns: 2},
		{StartColumn: 0, Row: 1, SpanColumns: 3},
	}, bar.Segments)

	assert.Equal(t, []string{"fest"}, view.ByDate["2025-06-08"])
	assert.Equal(t, []string{"cd", "lugia-1", "lugia-2"}, view.ByDate["2025-06-04"])
	assert.Empty(t, view.ByDate["2025-06-30"])
}

func TestMonthViewUngroupedMondayStart(t *testing.T) {
	svc, _ := newTestService(june())
	st := testSettings()
	st.GroupSimilarEvents = false
	st.ShowSprites = false
	st.FirstDayOfWeek = "Monday"

	view, err := svc.Month(context.Background(), 2025, time.June, st)
	require.NoError(t, err)

	assert.Equal(t, "Mon", view.DayHeaders[0])
	assert.Equal(t, "2025-05-26", view.Days[0].Date)
	assert.False(t, view.Days[0].InMonth)

	day4 := view.Days[9]
	assert.Equal(t, "2025-06-04", day4.Date)
	require.Len(t, day4.Items, 3)
	for _, it := range day4.Items {
		assert.False(t, it.Grouped)
		assert.Empty(t, it.Images)
	}
}

func TestMonthRejectsBadMonth(t *testing.T) {
	svc, _ := newTestService(nil)
	_, err := svc.Month(context.Background(), 2025, 13, testSettings())
	assert.Error(t, err)
}

func TestEventDetail(t *testing.T) {
	events := append(june(), model.Event{
		ID: "fest-raid-hour-2025-06-07", Name: "Mew Raid Hour", Type: "event", Start: at(7, 18), End: at(7, 19),
		Extra: model.ExtraData{IsRaidHourSubEvent: true, ParentEventID: "fest", RaidBattles: &model.RaidBattles{Bosses: []model.Boss{{Name: "Mew"}}}},
	})
	svc, _ := newTestService(events)

	d, err := svc.Event(context.Background(), "raids", testSettings())
	require.NoError(t, err)
	assert.Equal(t, "Raid Battles", d.Info.Name)
	assert.False(t, d.MultiDay)
	require.Len(t, d.Bosses, 2)
	require.NotNil(t, d.Bosses[0].CP)
	assert.Equal(t, 1972, d.Bosses[0].CP.Level20)
	assert.True(t, d.Bosses[0].CanBeShiny)
	assert.Nil(t, d.Bosses[1].CP)

	fest, err := svc.Event(context.Background(), "fest", testSettings())
	require.NoError(t, err)
	assert.True(t, fest.MultiDay)
	assert.Equal(t, []string{"fest-raid-hour-2025-06-07"}, fest.RaidHours)

	sub, err := svc.Event(context.Background(), "fest-raid-hour-2025-06-07", testSettings())
	require.NoError(t, err)
	assert.Equal(t, "fest", sub.ParentID)

	_, err = svc.Event(context.Background(), "nope", testSettings())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSpotlightDetail(t *testing.T) {
	svc, _ := newTestService([]model.Event{{
		ID: "spot", Name: "Pikachu Spotlight Hour", Type: "pokemon-spotlight-hour", Start: at(3, 18), End: at(3, 19),
		Extra: model.ExtraData{Spotlight: &model.Spotlight{Name: "Pikachu", Bonus: "2× Catch Stardust"}},
	}})
	d, err := svc.Event(context.Background(), "spot", testSettings())
	require.NoError(t, err)
	require.NotNil(t, d.Spotlight)
	assert.Equal(t, pokemon.SpotlightBonus{Category: "catch", Type: "stardust"}, *d.Spotlight)
}

func TestRefreshForces(t *testing.T) {
	svc, src := newTestService(nil)
	svc.Refresh(context.Background())
	assert.Equal(t, 1, src.forced)
}

func TestEventsByDate(t *testing.T) {
	events := []model.Event{
		{ID: "low", Type: "season", Start: time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC), End: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "high", Type: "community-day", Start: at(1, 14), End: at(1, 17)},
		{ID: "late", Type: "event", Start: at(30, 10), End: time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)},
	}
	by := EventsByDate(events, 2025, time.June, time.UTC)
	assert.Len(t, by, 30)
	ids := func(key string) []string {
		var out []string
		for _, ev := range by[key] {
			out = append(out, ev.ID)
		}
		return out
	}
	assert.Equal(t, []string{"high", "low"}, ids("2025-06-01"))
	assert.Equal(t, []string{"low"}, ids("2025-06-02"))
	assert.Empty(t, ids("2025-06-03"))
	assert.Equal(t, []string{"late"}, ids("2025-06-30"))
}
