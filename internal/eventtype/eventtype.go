// Package eventtype classifies feed events: display metadata per type slug,
// raid sub-types, multi-day and live status, and priority ordering.
package eventtype

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"pogocal/internal/datetime"
	"pogocal/internal/model"
)

// Info is the display metadata of an event type.
type Info struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	BgColor  string `json:"bg_color"`
	Priority int    `json:"priority"`
	Category string `json:"category"`
}

const (
	DefaultColor    = "#757575"
	DefaultBgColor  = "#F5F5F5"
	DefaultPriority = 5
	DefaultCategory = "misc"
)

// Raid sub-types.
const (
	SubTypeShadow      = "shadow-raids"
	SubTypeMega        = "mega-raids"
	SubTypeRaidBattles = "raid-battles"
	SubTypeRaidWeekend = "raid-weekend"
)

var table = map[string]Info{
	// Community & social
	"community-day":          {Name: "Community Day", Color: "#1660a9", BgColor: "#e3f2fd", Priority: 10, Category: "community"},
	"pokemon-spotlight-hour": {Name: "Spotlight Hour", Color: "#e58e26", BgColor: "#fff3e0", Priority: 7, Category: "community"},

	// Raids
	"raid-hour":    {Name: "Raid Hour", Color: "#c0392b", BgColor: "#ffebee", Priority: 8, Category: "raids"},
	"raid-day":     {Name: "Raid Day", Color: "#e74c3c", BgColor: "#ffebee", Priority: 9, Category: "raids"},
	"raid-weekend": {Name: "Raid Weekend", Color: "#6f1e51", BgColor: "#fce4ec", Priority: 9, Category: "raids"},
	"raid-battles": {Name: "Raid Battles", Color: "#c0392b", BgColor: "#ffebee", Priority: 6, Category: "raids"},
	"elite-raids":  {Name: "Elite Raids", Color: "#a21416", BgColor: "#ffebee", Priority: 10, Category: "raids"},

	// Max battles
	"max-battles": {Name: "Max Battles", Color: "#811356", BgColor: "#f3e5f5", Priority: 8, Category: "max-battles"},
	"max-mondays": {Name: "Max Monday", Color: "#690342", BgColor: "#f3e5f5", Priority: 7, Category: "max-battles"},

	// Research
	"research":              {Name: "Research", Color: "#1abc9c", BgColor: "#e0f2f1", Priority: 5, Category: "research"},
	"research-day":          {Name: "Research Day", Color: "#159e83", BgColor: "#e0f2f1", Priority: 8, Category: "research"},
	"timed-research":        {Name: "Timed Research", Color: "#1abc9c", BgColor: "#e0f2f1", Priority: 6, Category: "research"},
	"limited-research":      {Name: "Limited Research", Color: "#159e83", BgColor: "#e0f2f1", Priority: 6, Category: "research"},
	"special-research":      {Name: "Special Research", Color: "#13a185", BgColor: "#e0f2f1", Priority: 7, Category: "research"},
	"research-breakthrough": {Name: "Research Breakthrough", Color: "#795548", BgColor: "#efebe9", Priority: 5, Category: "research"},

	// Major events
	"pokemon-go-fest": {Name: "Pokemon GO Fest", Color: "#153d94", BgColor: "#e3f2fd", Priority: 10, Category: "major"},
	"pokemon-go-tour": {Name: "Pokemon GO Tour", Color: "#1d3a74", BgColor: "#e3f2fd", Priority: 10, Category: "major"},
	"safari-zone":     {Name: "Safari Zone", Color: "#3d7141", BgColor: "#e8f5e8", Priority: 9, Category: "major"},
	"ticketed-event":  {Name: "Ticketed Event", Color: "#de3e9b", BgColor: "#fce4ec", Priority: 8, Category: "major"},

	// Regular events
	"event":             {Name: "Event", Color: "#27ae60", BgColor: "#e8f5e8", Priority: 5, Category: "events"},
	"live-event":        {Name: "Live Event", Color: "#d63031", BgColor: "#ffebee", Priority: 7, Category: "events"},
	"location-specific": {Name: "Location Specific", Color: "#284b92", BgColor: "#e3f2fd", Priority: 4, Category: "events"},
	"bonus-hour":        {Name: "Bonus Hour", Color: "#40407a", BgColor: "#e8eaf6", Priority: 6, Category: "events"},

	// Battle
	"go-battle-league": {Name: "GO Battle League", Color: "#8e44ad", BgColor: "#f3e5f5", Priority: 5, Category: "battle"},

	// Team Rocket
	"go-rocket-takeover":        {Name: "Team GO Rocket Takeover", Color: "#1e1e1e", BgColor: "#fafafa", Priority: 8, Category: "rocket"},
	"team-go-rocket":            {Name: "Team GO Rocket", Color: "#1e1e1e", BgColor: "#fafafa", Priority: 6, Category: "rocket"},
	"giovanni-special-research": {Name: "Giovanni Special Research", Color: "#1e272e", BgColor: "#fafafa", Priority: 7, Category: "rocket"},

	// Showcases & competitions
	"pokestop-showcase": {Name: "PokéStop Showcase", Color: "#3ca392", BgColor: "#e0f2f1", Priority: 5, Category: "showcase"},
	"global-challenge":  {Name: "Global Challenge", Color: "#0a64b5", BgColor: "#e3f2fd", Priority: 8, Category: "showcase"},

	// System / meta
	"season":                 {Name: "Season", Color: "#38ada9", BgColor: "#e0f2f1", Priority: 3, Category: "meta"},
	"update":                 {Name: "Update", Color: "#2980b9", BgColor: "#e3f2fd", Priority: 2, Category: "meta"},
	"potential-ultra-unlock": {Name: "Potential Ultra Unlock", Color: "#2c3e50", BgColor: "#eceff1", Priority: 6, Category: "meta"},
	"go-pass":                {Name: "GO Pass", Color: "#ddb22f", BgColor: "#fffde7", Priority: 4, Category: "meta"},
}

var subTypeNames = map[string]string{
	SubTypeShadow:      "Shadow Raids",
	SubTypeMega:        "Mega Raids",
	SubTypeRaidBattles: "Raid Battles",
	SubTypeRaidWeekend: "Raid Weekend",
}

// subTypeable lists the types whose titles carry a raid sub-type.
var subTypeable = map[string]bool{
	"raid-battles": true,
	"raid-weekend": true,
}

// Lookup returns the metadata for slug. Unknown slugs get a humanized name
// and default styling.
func Lookup(slug string) Info {
	if info, ok := table[slug]; ok {
		info.Key = slug
		return info
	}
	return Info{
		Key:      slug,
		Name:     Humanize(slug),
		Color:    DefaultColor,
		BgColor:  DefaultBgColor,
		Priority: DefaultPriority,
		Category: DefaultCategory,
	}
}

// Known reports whether slug is in the static table.
func Known(slug string) bool {
	_, ok := table[slug]
	return ok
}

// Keys returns all known type slugs, sorted.
func Keys() []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// All returns the metadata for every known type, sorted by key.
func All() []Info {
	keys := Keys()
	out := make([]Info, 0, len(keys))
	for _, k := range keys {
		out = append(out, Lookup(k))
	}
	return out
}

// Humanize turns "some-event-type" into "Some Event Type".
func Humanize(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// Priority is Lookup(slug).Priority.
func Priority(slug string) int {
	return Lookup(slug).Priority
}

// RaidSubType derives shadow/mega/standard from the title of sub-typeable
// raid events. Other events yield "".
func RaidSubType(ev model.Event) string {
	if !subTypeable[ev.Type] {
		return ""
	}
	name := strings.ToLower(ev.Name)
	switch {
	case strings.Contains(name, "shadow"):
		return SubTypeShadow
	case strings.Contains(name, "mega"):
		return SubTypeMega
	case strings.Contains(name, "raid battles"):
		return SubTypeRaidBattles
	case strings.Contains(name, "raid weekend"):
		return SubTypeRaidWeekend
	}
	return ""
}

// SubTypeName is the display name of a raid sub-type, or "" if unknown.
func SubTypeName(subType string) string {
	return subTypeNames[subType]
}

// IsMultiDay reports whether the event's start and end fall on different
// local calendar days.
func IsMultiDay(ev model.Event) bool {
	return !datetime.SameDay(ev.Start, ev.End)
}

// IsPast reports whether the event has ended at now.
func IsPast(ev model.Event, now time.Time) bool {
	return !ev.End.After(now)
}

// IsLive reports whether now lies within [start, end).
func IsLive(ev model.Event, now time.Time) bool {
	return !now.Before(ev.Start) && now.Before(ev.End)
}

// SortByPriority orders events by descending type priority. The sort is
// stable so feed order breaks ties.
func SortByPriority(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return Priority(events[i].Type) > Priority(events[j].Type)
	})
}

// ForDate returns the events whose local date range covers day.
func ForDate(events []model.Event, day time.Time) []model.Event {
	target := datetime.StartOfDay(day)
	var out []model.Event
	for _, ev := range events {
		start := datetime.StartOfDay(ev.Start.In(day.Location()))
		end := datetime.StartOfDay(ev.End.In(day.Location()))
		if !target.Before(start) && !target.After(end) {
			out = append(out, ev)
		}
	}
	return out
}

// InMonth returns events overlapping the given month in loc.
func InMonth(events []model.Event, year int, month time.Month, loc *time.Location) []model.Event {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	next := first.AddDate(0, 1, 0)
	var out []model.Event
	for _, ev := range events {
		if ev.Start.Before(next) && !ev.End.Before(first) {
			out = append(out, ev)
		}
	}
	return out
}

// Color returns the custom color for slug when set, else the table color.
func Color(slug string, custom map[string]string) string {
	if c, ok := custom[slug]; ok && c != "" {
		return c
	}
	return Lookup(slug).Color
}
