// Package layout places multi-day event bars on a 7-column month grid.
package layout

import (
	"time"

	"pogocal/internal/datetime"
)

const Columns = 7

// Placement is a bar's position in grid cells.
type Placement struct {
	StartColumn int `json:"start_column"`
	Row         int `json:"row"`
	SpanColumns int `json:"span_columns"`
}

// FirstVisibleDay is the first cell of the month grid for a week starting
// on firstDay: the Sunday-start week of the month's first day shifted by
// firstDay, moved back one week when that lands after the first of the month.
func FirstVisibleDay(month time.Time, firstDay time.Weekday) time.Time {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	sunday := first.AddDate(0, 0, -int(first.Weekday()))
	day := sunday.AddDate(0, 0, int(firstDay))
	if day.After(first) {
		day = day.AddDate(0, 0, -7)
	}
	return day
}

// Weeks is the number of week rows needed to show every day of the month.
func Weeks(month time.Time, firstDay time.Weekday) int {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	last := first.AddDate(0, 1, -1)
	days := datetime.DaysBetween(FirstVisibleDay(month, firstDay), last) + 1
	return (days + Columns - 1) / Columns
}

// Days lists every cell of the grid, row by row.
func Days(month time.Time, firstDay time.Weekday) []time.Time {
	start := FirstVisibleDay(month, firstDay)
	n := Weeks(month, firstDay) * Columns
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

// Column is the 0-based weekday column of day relative to firstVisible.
func Column(day, firstVisible time.Time) int {
	return mod(datetime.DaysBetween(firstVisible, day), Columns)
}

// Row is the 0-based week row of day relative to firstVisible. Days before
// the grid yield negative rows.
func Row(day, firstVisible time.Time) int {
	d := datetime.DaysBetween(firstVisible, day)
	if d < 0 {
		return (d - Columns + 1) / Columns
	}
	return d / Columns
}

// Span is the number of columns a bar covers from startCol to endCol,
// wrapping across a week boundary, clamped to [1, 7].
func Span(startCol, endCol int) int {
	var span int
	if endCol >= startCol {
		span = endCol - startCol + 1
	} else {
		span = Columns - startCol + endCol + 1
	}
	return max(1, min(Columns, span))
}

// Place positions a bar for an event from start to end on the grid of month.
func Place(start, end, month time.Time, firstDay time.Weekday) Placement {
	fv := FirstVisibleDay(month, firstDay)
	sc := Column(start, fv)
	return Placement{
		StartColumn: sc,
		Row:         Row(start, fv),
		SpanColumns: Span(sc, Column(end, fv)),
	}
}

// Segments splits a bar into one placement per week row it touches,
// clipped to the visible grid. A bar entirely outside the grid yields nil.
func Segments(start, end, month time.Time, firstDay time.Weekday) []Placement {
	fv := FirstVisibleDay(month, firstDay)
	lastRow := Weeks(month, firstDay) - 1

	s := datetime.DaysBetween(fv, start)
	e := datetime.DaysBetween(fv, end)
	if e < s {
		e = s
	}
	lo, hi := 0, (lastRow+1)*Columns-1
	if e < lo || s > hi {
		return nil
	}
	s, e = max(s, lo), min(e, hi)

	var out []Placement
	for row := s / Columns; row <= e/Columns; row++ {
		from := max(s, row*Columns)
		to := min(e, row*Columns+Columns-1)
		out = append(out, Placement{
			StartColumn: from % Columns,
			Row:         row,
			SpanColumns: to - from + 1,
		})
	}
	return out
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// Grid converts cell placements to pixels for a measured grid width.
type Grid struct {
	width    float64
	colWidth float64
}

// NewGrid returns a grid measured at width pixels.
func NewGrid(width float64) *Grid {
	g := &Grid{}
	g.Resize(width)
	return g
}

// Resize records a new grid width and recomputes the column width.
func (g *Grid) Resize(width float64) {
	if width < 0 {
		width = 0
	}
	g.width = width
	g.colWidth = width / Columns
}

func (g *Grid) Width() float64       { return g.width }
func (g *Grid) ColumnWidth() float64 { return g.colWidth }

// Position is a bar's horizontal pixel extent.
type Position struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

func (g *Grid) Position(p Placement) Position {
	return Position{
		Left:  float64(p.StartColumn) * g.colWidth,
		Width: float64(p.SpanColumns) * g.colWidth,
	}
}

// DayHeaders rotates weekday names so the grid starts on firstDay.
func DayHeaders(firstDay time.Weekday) []string {
	out := make([]string, Columns)
	for i := range out {
		out[i] = time.Weekday((int(firstDay) + i) % Columns).String()[:3]
	}
	return out
}
