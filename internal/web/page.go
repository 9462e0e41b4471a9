package web

import (
	"bytes"
	"errors"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"time"

	"pogocal/internal/calendar"
	"pogocal/internal/layout"
	appLog "pogocal/internal/log"
	"pogocal/internal/prefs"
)

var templateFuncs = template.FuncMap{
	"clock": func(t time.Time) string {
		if t.Minute() == 0 {
			return t.Format("3 PM")
		}
		return t.Format("3:04 PM")
	},
	"px": func(f float64) string {
		return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64) + "px"
	},
}

// barSegment is one week-row slice of a multi-day bar in pixels.
type barSegment struct {
	calendar.Item
	Left  float64
	Width float64
}

// week is one grid row.
type week struct {
	Days []calendar.Day
	Bars []barSegment
}

type pageData struct {
	View       calendar.MonthView
	Weeks      []week
	GridWidth  float64
	Settings   prefs.Settings
	Query      calendar.Query
	PrevURL    string
	NextURL    string
	TodayURL   string
	Detail     *calendar.Detail
	SettingsOn bool
}

func (s *Server) handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := s.deps.Calendar.Now()
	q := calendar.ParseQuery(r.URL.Query(), now)
	st := s.settings(ctx)

	view, err := s.deps.Calendar.Month(ctx, q.Year, q.Month, st)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	grid := layout.NewGrid(float64(s.cfg.Capture.Width))
	data := pageData{
		View:       view,
		Weeks:      weeks(view, grid),
		GridWidth:  grid.Width(),
		Settings:   st,
		Query:      q,
		PrevURL:    pageURL(q.Shift(-1), now),
		NextURL:    pageURL(q.Shift(1), now),
		TodayURL:   "/calendar",
		SettingsOn: q.Settings,
	}
	if q.Event != "" {
		d, err := s.deps.Calendar.Event(ctx, q.Event, st)
		switch {
		case err == nil:
			data.Detail = &d
		case errors.Is(err, calendar.ErrNotFound):
			appLog.Debug("calendar page: selected event not found", "id", q.Event)
		default:
			appLog.Error("calendar page: event detail failed", err, "id", q.Event)
		}
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		appLog.Error("calendar page render failed", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// weeks slices the grid into rows and positions bar segments on them.
func weeks(view calendar.MonthView, grid *layout.Grid) []week {
	out := make([]week, 0, view.Weeks)
	for i := 0; i < len(view.Days); i += layout.Columns {
		end := min(i+layout.Columns, len(view.Days))
		out = append(out, week{Days: view.Days[i:end]})
	}
	for _, b := range view.Bars {
		for _, seg := range b.Segments {
			if seg.Row < 0 || seg.Row >= len(out) {
				continue
			}
			pos := grid.Position(seg)
			out[seg.Row].Bars = append(out[seg.Row].Bars, barSegment{Item: b.Item, Left: pos.Left, Width: pos.Width})
		}
	}
	return out
}

func pageURL(q calendar.Query, now time.Time) string {
	v := q.Values(now)
	if len(v) == 0 {
		return "/calendar"
	}
	return "/calendar?" + v.Encode()
}
