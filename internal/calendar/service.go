// Package calendar assembles the month view and event details from the feed
// store, user preferences and sprite extraction.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"pogocal/internal/datetime"
	"pogocal/internal/eventname"
	"pogocal/internal/eventtype"
	"pogocal/internal/feed"
	"pogocal/internal/group"
	"pogocal/internal/layout"
	appLog "pogocal/internal/log"
	"pogocal/internal/model"
	"pogocal/internal/pokemon"
	"pogocal/internal/prefs"
)

// ErrNotFound is returned for an event ID the feed does not contain.
var ErrNotFound = errors.New("calendar: event not found")

// Source is the feed store.
type Source interface {
	Refresh(ctx context.Context, force bool) feed.Snapshot
	Location() *time.Location
}

// RaidCPSource estimates raid catch CP by creature name.
type RaidCPSource interface {
	RaidCP(ctx context.Context, name string) (pokemon.RaidCP, error)
}

// Item is one rendered event or group.
type Item struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	SubType   string          `json:"sub_type,omitempty"`
	TypeName  string          `json:"type_name"`
	Color     string          `json:"color"`
	Heading   string          `json:"heading,omitempty"`
	Link      string          `json:"link,omitempty"`
	Image     string          `json:"image,omitempty"`
	Start     time.Time       `json:"start"`
	End       time.Time       `json:"end"`
	Range     string          `json:"range"`
	Grouped   bool            `json:"grouped"`
	Count     int             `json:"count"`
	MemberIDs []string        `json:"member_ids,omitempty"`
	Images    []pokemon.Image `json:"images,omitempty"`
	Past      bool            `json:"past"`
	Live      bool            `json:"live"`
}

// Day is one cell of the month grid with its single-day items.
type Day struct {
	Date    string `json:"date"`
	Day     int    `json:"day"`
	InMonth bool   `json:"in_month"`
	Today   bool   `json:"today"`
	Items   []Item `json:"items"`
}

// Bar is a multi-day item with its grid placement.
type Bar struct {
	Item
	Placement layout.Placement   `json:"placement"`
	Segments  []layout.Placement `json:"segments"`
}

// MonthView is everything needed to render one month.
type MonthView struct {
	Year       int                 `json:"year"`
	Month      int                 `json:"month"`
	Title      string              `json:"title"`
	FirstDay   string              `json:"first_day"`
	DayHeaders []string            `json:"day_headers"`
	Weeks      int                 `json:"weeks"`
	Days       []Day               `json:"days"`
	Bars       []Bar               `json:"bars"`
	ByDate     map[string][]string `json:"by_date"`
	FetchedAt  time.Time           `json:"fetched_at"`
	FromCache  bool                `json:"from_cache"`
	Error      string              `json:"error,omitempty"`
}

// Service builds views over the feed.
type Service struct {
	src       Source
	extractor *pokemon.Extractor
	stats     RaidCPSource
	now       func() time.Time
}

type Option func(*Service)

// WithStats enables CP estimates in event details.
func WithStats(s RaidCPSource) Option {
	return func(svc *Service) { svc.stats = s }
}

// WithNow sets the clock used for past and live marks, typically the minute
// ticker's Current.
func WithNow(now func() time.Time) Option {
	return func(svc *Service) {
		if now != nil {
			svc.now = now
		}
	}
}

func WithExtractor(e *pokemon.Extractor) Option {
	return func(svc *Service) {
		if e != nil {
			svc.extractor = e
		}
	}
}

func NewService(src Source, opts ...Option) *Service {
	s := &Service{src: src, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if s.extractor == nil {
		s.extractor = pokemon.NewExtractor(nil)
	}
	return s
}

// Location is the display timezone.
func (s *Service) Location() *time.Location {
	return s.src.Location()
}

// Now is the current minute in the display timezone.
func (s *Service) Now() time.Time {
	return s.now().In(s.src.Location()).Truncate(time.Minute)
}

// Refresh forces a feed refetch.
func (s *Service) Refresh(ctx context.Context) feed.Snapshot {
	return s.src.Refresh(ctx, true)
}

// Visible drops events of disabled types and hidden IDs.
func Visible(events []model.Event, st prefs.Settings) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if !st.TypeEnabled(ev.Type) || st.IsHidden(ev.ID) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Month builds the view for year/month under the given settings.
func (s *Service) Month(ctx context.Context, year int, month time.Month, st prefs.Settings) (MonthView, error) {
	if month < time.January || month > time.December {
		return MonthView{}, fmt.Errorf("calendar: month %d out of range", month)
	}
	st.Normalize()

	snap := s.src.Refresh(ctx, false)
	loc := s.src.Location()
	now := s.Now()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	firstDay := time.Weekday(st.FirstDayIndex())

	events := eventtype.InMonth(Visible(snap.Events, st), year, month, loc)

	var single, multi []model.Event
	for _, ev := range events {
		if eventtype.IsMultiDay(ev) {
			multi = append(multi, ev)
		} else {
			single = append(single, ev)
		}
	}

	view := MonthView{
		Year:       year,
		Month:      int(month),
		Title:      first.Format(datetime.MonthYear),
		FirstDay:   prefs.DayNames[firstDay],
		DayHeaders: layout.DayHeaders(firstDay),
		Weeks:      layout.Weeks(first, firstDay),
		ByDate:     make(map[string][]string),
		FetchedAt:  snap.FetchedAt,
		FromCache:  snap.FromCache,
		Error:      snap.Error,
	}

	byDay := make(map[string][]Item)
	for _, d := range group.Group(single, st.GroupSimilarEvents) {
		key := d.Start().Format(datetime.CalendarDate)
		byDay[key] = append(byDay[key], s.item(d, st, now, false))
	}
	for _, day := range layout.Days(first, firstDay) {
		key := day.Format(datetime.CalendarDate)
		items := byDay[key]
		sort.SliceStable(items, func(i, j int) bool {
			return eventtype.Priority(items[i].Type) > eventtype.Priority(items[j].Type)
		})
		view.Days = append(view.Days, Day{
			Date:    key,
			Day:     day.Day(),
			InMonth: day.Month() == month,
			Today:   datetime.SameDay(day, now),
			Items:   items,
		})
	}

	for _, d := range group.Group(multi, st.GroupSimilarEvents) {
		segs := layout.Segments(d.Start(), d.End(), first, firstDay)
		if len(segs) == 0 {
			continue
		}
		view.Bars = append(view.Bars, Bar{
			Item:      s.item(d, st, now, true),
			Placement: layout.Place(d.Start(), d.End(), first, firstDay),
			Segments:  segs,
		})
	}

	for date, evs := range EventsByDate(events, year, month, loc) {
		ids := make([]string, 0, len(evs))
		for _, ev := range evs {
			ids = append(ids, ev.ID)
		}
		view.ByDate[date] = ids
	}
	return view, nil
}

func (s *Service) item(d model.Displayable, st prefs.Settings, now time.Time, multiDay bool) Item {
	ev := d.Event
	name := eventname.Format(ev.Name)
	if d.IsGrouped() && d.Name != "" {
		name = d.Name
	}
	sub := eventtype.RaidSubType(ev)
	typeName := eventtype.Lookup(ev.Type).Name
	if n := eventtype.SubTypeName(sub); n != "" {
		typeName = n
	}

	it := Item{
		ID:        d.ID(),
		Name:      name,
		Type:      ev.Type,
		SubType:   sub,
		TypeName:  typeName,
		Color:     eventtype.Color(ev.Type, st.CustomColors),
		Heading:   ev.Heading,
		Link:      ev.Link,
		Image:     ev.Image,
		Start:     ev.Start,
		End:       ev.End,
		Range:     datetime.FormatRange(ev.Start, ev.End),
		Grouped:   d.IsGrouped(),
		Count:     d.Count(),
		Past:      eventtype.IsPast(ev, now),
		Live:      eventtype.IsLive(ev, now),
	}
	if it.Grouped {
		it.MemberIDs = d.MemberIDs()
	}
	if st.ShowSprites {
		it.Images = s.images(d, st, multiDay)
	}
	return it
}

// images collects the creatures of every member, first occurrence wins.
func (s *Service) images(d model.Displayable, st prefs.Settings, multiDay bool) []pokemon.Image {
	opts := pokemon.Options{Animated: st.AnimatedSprites}
	members := d.Members
	if !d.IsGrouped() {
		members = []model.Event{d.Event}
	}

	seen := make(map[string]bool)
	var out []pokemon.Image
	for _, m := range members {
		var imgs []pokemon.Image
		if multiDay {
			imgs = s.extractor.MultiDayImages(m, opts)
		} else {
			imgs = s.extractor.Images(m, opts)
		}
		for _, img := range imgs {
			if seen[img.Name] {
				continue
			}
			seen[img.Name] = true
			out = append(out, img)
		}
	}
	return out
}

// BossDetail is a raid boss with its catch CP range when known.
type BossDetail struct {
	Name       string          `json:"name"`
	Image      string          `json:"image,omitempty"`
	CanBeShiny bool            `json:"can_be_shiny,omitempty"`
	CP         *pokemon.RaidCP `json:"cp,omitempty"`
}

// Detail is the full view of one event.
type Detail struct {
	Item
	Info      eventtype.Info          `json:"info"`
	MultiDay  bool                    `json:"multi_day"`
	Spotlight *pokemon.SpotlightBonus `json:"spotlight,omitempty"`
	Bosses    []BossDetail            `json:"bosses,omitempty"`
	ParentID  string                  `json:"parent_id,omitempty"`
	RaidHours []string                `json:"raid_hours,omitempty"`
}

// Event returns the detail of the event with the given ID.
func (s *Service) Event(ctx context.Context, id string, st prefs.Settings) (Detail, error) {
	st.Normalize()
	snap := s.src.Refresh(ctx, false)
	now := s.Now()

	var (
		ev    model.Event
		found bool
		subs  []string
	)
	for _, e := range snap.Events {
		if e.ID == id {
			ev, found = e, true
		}
		if e.Extra.ParentEventID == id {
			subs = append(subs, e.ID)
		}
	}
	if !found {
		return Detail{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	d := Detail{
		Item:      s.item(model.Single(ev), st, now, false),
		Info:      eventtype.Lookup(ev.Type),
		MultiDay:  eventtype.IsMultiDay(ev),
		ParentID:  ev.Extra.ParentEventID,
		RaidHours: subs,
	}
	if !st.ShowSprites {
		// Details always show creatures.
		d.Images = s.images(model.Single(ev), st, false)
	}
	if b, ok := pokemon.SpotlightBonusOf(ev); ok {
		d.Spotlight = &b
	}
	for _, b := range ev.Extra.Bosses() {
		bd := BossDetail{Name: b.Name, Image: b.Image, CanBeShiny: b.CanBeShiny}
		if s.stats != nil {
			cp, err := s.stats.RaidCP(ctx, b.Name)
			if err == nil {
				bd.CP = &cp
			} else {
				appLog.Debug("no raid CP for boss", "name", b.Name, "err", err)
			}
		}
		d.Bosses = append(d.Bosses, bd)
	}
	return d, nil
}

// Events returns every visible event in feed order, for export.
func (s *Service) Events(ctx context.Context, st prefs.Settings) []model.Event {
	snap := s.src.Refresh(ctx, false)
	return Visible(snap.Events, st)
}
