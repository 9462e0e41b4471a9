package calendar

import (
	"time"

	"pogocal/internal/datetime"
	"pogocal/internal/eventtype"
	"pogocal/internal/model"
)

// EventsByDate lists, for every day of the month, the events covering that
// day ordered by type priority. Days without events map to an empty slice.
func EventsByDate(events []model.Event, year int, month time.Month, loc *time.Location) map[string][]model.Event {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)

	out := make(map[string][]model.Event, last.Day())
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		evs := eventtype.ForDate(events, d)
		if evs == nil {
			evs = []model.Event{}
		}
		eventtype.SortByPriority(evs)
		out[d.Format(datetime.CalendarDate)] = evs
	}
	return out
}
