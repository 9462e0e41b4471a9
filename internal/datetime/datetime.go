// Package datetime converts feed timestamps into display-zone values and
// formats them for the calendar.
package datetime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Display layouts.
const (
	CalendarDate = "2006-01-02"
	MonthYear    = "January 2006"
	DisplayDate  = "Jan 2"
	DateTime     = "2006-01-02 15:04"
	TimeOnly     = "15:04"
	Time12h      = "3 PM"
	FullDateTime = "2006-01-02 15:04:05"
)

// localLayouts are the zone-less forms the feed uses for events that happen
// at the same wall-clock time everywhere.
var localLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Parse reads a feed timestamp. Values suffixed with Z (or carrying an
// explicit offset) are absolute and converted into loc; values without a zone
// are wall-clock times and read directly in loc.
func Parse(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("datetime: empty timestamp")
	}

	if hasZone(s) {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("datetime: parse %q: %w", s, err)
		}
		return t.In(loc), nil
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("datetime: unrecognized timestamp %q", s)
}

func hasZone(s string) bool {
	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		return true
	}
	i := strings.IndexByte(s, 'T')
	if i < 0 {
		return false
	}
	clock := s[i+1:]
	return strings.ContainsAny(clock, "+-")
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween returns the number of calendar days from a to b. Both are
// reduced to their dates first so DST transitions do not skew the count.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// FormatRange renders "Aug 15 @ 2 PM - 5 PM" for same-day ranges and
// "Aug 15 @ 2 PM - Aug 17 @ 5 PM" otherwise.
func FormatRange(start, end time.Time) string {
	if SameDay(start, end) {
		return fmt.Sprintf("%s @ %s - %s",
			start.Format(DisplayDate), start.Format(Time12h), end.Format(Time12h))
	}
	return fmt.Sprintf("%s @ %s - %s @ %s",
		start.Format(DisplayDate), start.Format(Time12h),
		end.Format(DisplayDate), end.Format(Time12h))
}

// LoadLocation resolves an IANA zone name. "" and "Local" map to time.Local.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}
