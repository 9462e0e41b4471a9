package calendar

import (
	"net/url"
	"strconv"
	"time"
)

// FirstYear is the earliest year a shared link may select.
const FirstYear = 2016

// Query is the shareable calendar state carried in URL parameters.
type Query struct {
	Year     int
	Month    time.Month
	Settings bool   // settings panel open
	Event    string // selected event ID
}

// ParseQuery reads month (1-12), year (2016 through next year), settings
// and event. Out-of-range or missing values select the month of now.
func ParseQuery(v url.Values, now time.Time) Query {
	q := Query{
		Year:     now.Year(),
		Month:    now.Month(),
		Settings: v.Get("settings") == "1",
		Event:    v.Get("event"),
	}
	if m, err := strconv.Atoi(v.Get("month")); err == nil && m >= 1 && m <= 12 {
		q.Month = time.Month(m)
	}
	if y, err := strconv.Atoi(v.Get("year")); err == nil && y >= FirstYear && y <= now.Year()+1 {
		q.Year = y
	}
	return q
}

// IsCurrent reports whether q shows the month of now.
func (q Query) IsCurrent(now time.Time) bool {
	return q.Year == now.Year() && q.Month == now.Month()
}

// Values encodes q, leaving out month and year when they match now.
func (q Query) Values(now time.Time) url.Values {
	v := url.Values{}
	if !q.IsCurrent(now) {
		v.Set("month", strconv.Itoa(int(q.Month)))
		v.Set("year", strconv.Itoa(q.Year))
	}
	if q.Settings {
		v.Set("settings", "1")
	}
	if q.Event != "" {
		v.Set("event", q.Event)
	}
	return v
}

// Shift moves q by n months. The settings panel stays open; the selected
// event is dropped.
func (q Query) Shift(n int) Query {
	t := time.Date(q.Year, q.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	q.Year, q.Month = t.Year(), t.Month()
	q.Event = ""
	return q
}
