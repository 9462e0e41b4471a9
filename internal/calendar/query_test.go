package calendar

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseQuery(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		query string
		want  Query
	}{
		{"empty", "", Query{Year: 2025, Month: time.June}},
		{"explicit", "month=2&year=2024&settings=1&event=abc", Query{Year: 2024, Month: time.February, Settings: true, Event: "abc"}},
		{"month out of range", "month=13&year=2024", Query{Year: 2024, Month: time.June}},
		{"month zero", "month=0", Query{Year: 2025, Month: time.June}},
		{"year too early", "month=3&year=2015", Query{Year: 2025, Month: time.March}},
		{"next year allowed", "month=1&year=2026", Query{Year: 2026, Month: time.January}},
		{"year too late", "year=2027", Query{Year: 2025, Month: time.June}},
		{"garbage", "month=abc&year=x&settings=true", Query{Year: 2025, Month: time.June}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ParseQuery(v, now))
		})
	}
}

func TestQueryValues(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	current := Query{Year: 2025, Month: time.June, Event: "abc"}
	assert.Equal(t, "event=abc", current.Values(now).Encode())

	other := Query{Year: 2024, Month: time.December, Settings: true}
	assert.Equal(t, "month=12&settings=1&year=2024", other.Values(now).Encode())
}

func TestQueryShift(t *testing.T) {
	q := Query{Year: 2024, Month: time.December, Settings: true, Event: "x"}
	next := q.Shift(1)
	assert.Equal(t, Query{Year: 2025, Month: time.January, Settings: true}, next)
	assert.Equal(t, Query{Year: 2024, Month: time.November, Settings: true}, q.Shift(-1))
}
