package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"pogocal/internal/calendar"
	"pogocal/internal/config"
	"pogocal/internal/eventtype"
	"pogocal/internal/ics"
	appLog "pogocal/internal/log"
	"pogocal/internal/pokemon"
	"pogocal/internal/prefs"
)

//go:embed templates/*.html
var templateFS embed.FS

// Deps are the services the HTTP surface reads from.
type Deps struct {
	Calendar *calendar.Service
	Prefs    *prefs.Preferences
	// Stats may be nil; /api/pokemon/cp then answers 503.
	Stats calendar.RaidCPSource
	// AfterRefresh, if set, runs after a manual refresh succeeds.
	AfterRefresh func(ctx context.Context)
}

// Server provides the JSON API, the calendar page and the iCalendar feed.
type Server struct {
	cfg  *config.Config
	deps Deps
	mux  *http.ServeMux
	page *template.Template
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	page, err := template.New("calendar.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/calendar.html")
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:  cfg,
		deps: deps,
		mux:  http.NewServeMux(),
		page: page,
	}
	s.registerRoutes()
	return s, nil
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials disable auth.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="pogocal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/events", s.handleMonth)
	s.mux.HandleFunc("GET /api/events/{id}", s.handleEvent)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /api/types", s.handleTypes)
	s.mux.HandleFunc("GET /api/prefs", s.handleGetPrefs)
	s.mux.HandleFunc("PUT /api/prefs", s.handlePutPrefs)
	s.mux.HandleFunc("POST /api/prefs/filters", s.handleAllFilters)
	s.mux.HandleFunc("POST /api/prefs/filters/{type}", s.handleToggleFilter)
	s.mux.HandleFunc("POST /api/prefs/theme", s.handleToggleTheme)
	s.mux.HandleFunc("POST /api/prefs/hidden/{id}", s.handleHide)
	s.mux.HandleFunc("DELETE /api/prefs/hidden/{id}", s.handleUnhide)
	s.mux.HandleFunc("GET /api/pokemon/cp", s.handleCP)
	s.mux.HandleFunc("GET /calendar", s.handleCalendarPage)
	s.mux.HandleFunc("GET /calendar.ics", s.handleICS)
	s.mux.HandleFunc("GET /preview.png", s.handlePreview)
	s.mux.Handle("GET /{$}", http.RedirectHandler("/calendar", http.StatusFound))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// settings loads the stored preferences. A backend failure degrades to the
// defaults so the calendar still renders.
func (s *Server) settings(ctx context.Context) prefs.Settings {
	st, err := s.deps.Prefs.Load(ctx)
	if err != nil {
		appLog.Error("preferences load failed; using defaults", err)
	}
	return st
}

// handleMonth returns the month view.
//
// GET /api/events?month=6&year=2025
//   - month: 1-12, defaults to the current month
//   - year:  2016 through next year, defaults to the current year
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := calendar.ParseQuery(r.URL.Query(), s.deps.Calendar.Now())

	view, err := s.deps.Calendar.Month(ctx, q.Year, q.Month, s.settings(ctx))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, err := s.deps.Calendar.Event(ctx, r.PathValue("id"), s.settings(ctx))
	if errors.Is(err, calendar.ErrNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		appLog.Error("api event failed", err, "id", r.PathValue("id"))
		writeError(w, http.StatusInternalServerError, "failed to load event")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// refreshResponse is the JSON response shape for /api/refresh.
type refreshResponse struct {
	Events    int       `json:"events"`
	FetchedAt time.Time `json:"fetched_at"`
	FromCache bool      `json:"from_cache"`
	Error     string    `json:"error,omitempty"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap := s.deps.Calendar.Refresh(r.Context())
	resp := refreshResponse{
		Events:    len(snap.Events),
		FetchedAt: snap.FetchedAt,
		FromCache: snap.FromCache,
		Error:     snap.Error,
	}
	if snap.Error != "" {
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	if s.deps.AfterRefresh != nil {
		// Detached from the request so the client is not held up.
		go s.deps.AfterRefresh(context.WithoutCancel(r.Context()))
	}
	writeJSON(w, http.StatusOK, resp)
}

// typeDTO is an event type with the user's color and filter state applied.
type typeDTO struct {
	eventtype.Info
	Enabled bool `json:"enabled"`
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	st := s.settings(r.Context())
	infos := eventtype.All()
	out := make([]typeDTO, 0, len(infos))
	for _, info := range infos {
		info.Color = eventtype.Color(info.Key, st.CustomColors)
		out = append(out, typeDTO{Info: info, Enabled: st.TypeEnabled(info.Key)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPrefs(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Prefs.Load(r.Context())
	if err != nil {
		appLog.Error("preferences load failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handlePutPrefs(w http.ResponseWriter, r *http.Request) {
	var st prefs.Settings
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	if err := dec.Decode(&st); err != nil {
		writeError(w, http.StatusBadRequest, "invalid preferences body")
		return
	}
	if err := s.deps.Prefs.Save(r.Context(), st); err != nil {
		appLog.Error("preferences save failed", err)
		writeError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	s.handleGetPrefs(w, r)
}

func (s *Server) updatePrefs(w http.ResponseWriter, r *http.Request, fn func(*prefs.Settings)) {
	st, err := s.deps.Prefs.Update(r.Context(), fn)
	if err != nil {
		appLog.Error("preferences update failed", err)
		writeError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleToggleFilter(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("type")
	if !eventtype.Known(key) {
		writeError(w, http.StatusNotFound, "unknown event type")
		return
	}
	s.updatePrefs(w, r, func(st *prefs.Settings) { st.ToggleType(key) })
}

// handleAllFilters shows or hides every event type.
//
// POST /api/prefs/filters?all=on|off
func (s *Server) handleAllFilters(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("all") {
	case "on":
		s.updatePrefs(w, r, func(st *prefs.Settings) { st.EnableAll() })
	case "off":
		s.updatePrefs(w, r, func(st *prefs.Settings) { st.DisableAll() })
	default:
		writeError(w, http.StatusBadRequest, "all must be on or off")
	}
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	s.updatePrefs(w, r, func(st *prefs.Settings) { st.ToggleTheme() })
}

func (s *Server) handleHide(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.updatePrefs(w, r, func(st *prefs.Settings) { st.Hide(id) })
}

func (s *Server) handleUnhide(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.updatePrefs(w, r, func(st *prefs.Settings) { st.Unhide(id) })
}

// handleCP returns the level 20 and 25 perfect-IV CP of a raid boss.
//
// GET /api/pokemon/cp?name=Mega+Latias
func (s *Server) handleCP(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if s.deps.Stats == nil {
		writeError(w, http.StatusServiceUnavailable, "species data unavailable")
		return
	}
	cp, err := s.deps.Stats.RaidCP(r.Context(), name)
	if errors.Is(err, pokemon.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown pokemon")
		return
	}
	if err != nil {
		appLog.Error("raid CP lookup failed", err, "name", name)
		writeError(w, http.StatusBadGateway, "species data unavailable")
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := s.settings(ctx)
	events := s.deps.Calendar.Events(ctx, st)

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="pogocal.ics"`)
	err := ics.Export(w, events, ics.Options{
		Timezone: s.cfg.Timezone,
		Stamp:    s.deps.Calendar.Now(),
		Colors:   st.CustomColors,
	})
	if err != nil {
		appLog.Error("ics export failed", err)
	}
}

// handlePreview serves the last captured PNG of the calendar page.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	// http.ServeFile answers 404 for a missing file.
	http.ServeFile(w, r, s.cfg.Capture.OutputPath)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
