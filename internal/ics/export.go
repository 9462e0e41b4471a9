// Package ics renders feed events as an iCalendar document.
package ics

import (
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"pogocal/internal/eventname"
	"pogocal/internal/eventtype"
	"pogocal/internal/model"
)

// DefaultName is the calendar display name.
const DefaultName = "Pokémon GO Events"

// Options control the exported calendar.
type Options struct {
	Name string
	// Timezone is advertised as X-WR-TIMEZONE. Times are always written in UTC.
	Timezone string
	// Stamp is written as DTSTAMP on every event. Zero means now.
	Stamp time.Time
	// Colors overrides type colors by slug.
	Colors map[string]string
}

// Build creates one VEVENT per event. UIDs are the feed IDs, so subscribed
// clients update events in place across refreshes.
func Build(events []model.Event, opts Options) *ical.Calendar {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}

	cal := ical.NewCalendarFor("pogocal")
	cal.SetMethod(ical.MethodPublish)
	cal.SetName(opts.Name)
	cal.SetRefreshInterval("PT1H")
	if opts.Timezone != "" && opts.Timezone != "Local" {
		cal.SetXWRTimezone(opts.Timezone)
	}

	for _, ev := range events {
		info := eventtype.Lookup(ev.Type)
		ve := cal.AddEvent(ev.ID + "@pogocal")
		ve.SetDtStampTime(opts.Stamp)
		ve.SetStartAt(ev.Start)
		ve.SetEndAt(ev.End)
		ve.SetSummary(eventname.Format(ev.Name))
		ve.AddCategory(info.Name)
		ve.SetColor(eventtype.Color(ev.Type, opts.Colors))
		if ev.Heading != "" {
			ve.SetDescription(ev.Heading)
		}
		if ev.Link != "" {
			ve.SetURL(ev.Link)
		}
	}
	return cal
}

// Export writes the calendar for events to w.
func Export(w io.Writer, events []model.Event, opts Options) error {
	return Build(events, opts).SerializeTo(w)
}
