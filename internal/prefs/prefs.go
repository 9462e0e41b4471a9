package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"

	"pogocal/internal/config"
	"pogocal/internal/eventtype"
	appLog "pogocal/internal/log"
)

// KeyPrefix namespaces every stored key.
const KeyPrefix = "pogo-calendar"

func storageKey(k string) string { return KeyPrefix + "-" + k }

var (
	KeyDisabledFilters    = storageKey("disabled-filters")
	KeyHiddenEvents       = storageKey("hidden-events")
	KeyFirstDayOfWeek     = storageKey("first-day-of-week")
	KeyGroupSimilarEvents = storageKey("group-similar-events")
	KeyShowSprites        = storageKey("show-sprites")
	KeyAnimatedSprites    = storageKey("animated-sprites")
	KeyFontSize           = storageKey("font-size")
	KeyThemeMode          = storageKey("theme-mode")
	KeyCollapsedSections  = storageKey("collapsed-sections")
	KeyCustomColors       = storageKey("custom-colors")
)

// DayNames are the accepted first-day-of-week values.
var DayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var (
	themeModes = []string{"light", "dark", "auto"}
	fontSizes  = []string{"small", "medium", "large"}
)

// Settings is the full set of user preferences.
type Settings struct {
	DisabledFilters    []string          `json:"disabled_filters"`
	HiddenEvents       []string          `json:"hidden_events"`
	FirstDayOfWeek     string            `json:"first_day_of_week"`
	GroupSimilarEvents bool              `json:"group_similar_events"`
	ShowSprites        bool              `json:"show_sprites"`
	AnimatedSprites    bool              `json:"animated_sprites"`
	FontSize           string            `json:"font_size"`
	ThemeMode          string            `json:"theme_mode"`
	CollapsedSections  map[string]bool   `json:"collapsed_sections"`
	CustomColors       map[string]string `json:"custom_colors"`
}

// Defaults derives the initial settings from the server config.
func Defaults(cfg *config.Config) Settings {
	s := Settings{
		FirstDayOfWeek:     "Sunday",
		GroupSimilarEvents: true,
		ShowSprites:        true,
		FontSize:           "medium",
		ThemeMode:          "light",
		CollapsedSections:  map[string]bool{},
		CustomColors:       map[string]string{},
	}
	if cfg != nil {
		if i := config.WeekdayIndex(cfg.WeekStart); i >= 0 {
			s.FirstDayOfWeek = DayNames[i]
		}
		s.GroupSimilarEvents = cfg.GroupSimilarEvents
		s.AnimatedSprites = cfg.AnimatedSprites
	}
	return s
}

// FirstDayIndex is 0 for Sunday through 6 for Saturday; unknown names fall
// back to Sunday.
func (s Settings) FirstDayIndex() int {
	if i := config.WeekdayIndex(s.FirstDayOfWeek); i >= 0 {
		return i
	}
	return 0
}

// TypeEnabled reports whether events of type key are shown.
func (s Settings) TypeEnabled(key string) bool {
	return !slices.Contains(s.DisabledFilters, key)
}

func (s *Settings) ToggleType(key string) {
	if s.TypeEnabled(key) {
		s.DisableType(key)
		return
	}
	s.EnableType(key)
}

func (s *Settings) EnableType(key string) {
	s.DisabledFilters = slices.DeleteFunc(s.DisabledFilters, func(k string) bool { return k == key })
}

func (s *Settings) DisableType(key string) {
	if s.TypeEnabled(key) {
		s.DisabledFilters = append(s.DisabledFilters, key)
	}
}

func (s *Settings) EnableAll() {
	s.DisabledFilters = nil
}

func (s *Settings) DisableAll() {
	s.DisabledFilters = eventtype.Keys()
}

// EnabledTypes lists the known type keys that are not disabled.
func (s Settings) EnabledTypes() []string {
	var out []string
	for _, k := range eventtype.Keys() {
		if s.TypeEnabled(k) {
			out = append(out, k)
		}
	}
	return out
}

func (s Settings) IsHidden(id string) bool {
	return slices.Contains(s.HiddenEvents, id)
}

func (s *Settings) Hide(id string) {
	if !s.IsHidden(id) {
		s.HiddenEvents = append(s.HiddenEvents, id)
	}
}

func (s *Settings) Unhide(id string) {
	s.HiddenEvents = slices.DeleteFunc(s.HiddenEvents, func(h string) bool { return h == id })
}

// ToggleTheme cycles light, dark, auto.
func (s *Settings) ToggleTheme() {
	i := slices.Index(themeModes, s.ThemeMode)
	s.ThemeMode = themeModes[(i+1)%len(themeModes)]
}

// Normalize replaces out-of-range values with defaults.
func (s *Settings) Normalize() {
	def := Defaults(nil)
	day := strings.ToLower(strings.TrimSpace(s.FirstDayOfWeek))
	if i := config.WeekdayIndex(day); i >= 0 {
		s.FirstDayOfWeek = DayNames[i]
	} else {
		s.FirstDayOfWeek = def.FirstDayOfWeek
	}
	if !slices.Contains(themeModes, s.ThemeMode) {
		s.ThemeMode = def.ThemeMode
	}
	if !slices.Contains(fontSizes, s.FontSize) {
		s.FontSize = def.FontSize
	}
	if s.CollapsedSections == nil {
		s.CollapsedSections = map[string]bool{}
	}
	if s.CustomColors == nil {
		s.CustomColors = map[string]string{}
	}
}

// Preferences reads and writes Settings through a Backend, one key per
// setting.
type Preferences struct {
	backend  Backend
	defaults Settings

	mu sync.Mutex
}

func New(backend Backend, defaults Settings) *Preferences {
	defaults.Normalize()
	return &Preferences{backend: backend, defaults: defaults}
}

// Load reads every key. Missing or malformed values yield the default for
// that key; only backend failures are returned.
func (p *Preferences) Load(ctx context.Context) (Settings, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load(ctx)
}

func (p *Preferences) load(ctx context.Context) (Settings, error) {
	d := p.defaults
	s := Settings{}
	var err error
	get := func(key string, dst any, def any) {
		if err != nil {
			return
		}
		err = p.read(ctx, key, dst, def)
	}

	get(KeyDisabledFilters, &s.DisabledFilters, d.DisabledFilters)
	get(KeyHiddenEvents, &s.HiddenEvents, d.HiddenEvents)
	get(KeyFirstDayOfWeek, &s.FirstDayOfWeek, d.FirstDayOfWeek)
	get(KeyGroupSimilarEvents, &s.GroupSimilarEvents, d.GroupSimilarEvents)
	get(KeyShowSprites, &s.ShowSprites, d.ShowSprites)
	get(KeyAnimatedSprites, &s.AnimatedSprites, d.AnimatedSprites)
	get(KeyFontSize, &s.FontSize, d.FontSize)
	get(KeyThemeMode, &s.ThemeMode, d.ThemeMode)
	get(KeyCollapsedSections, &s.CollapsedSections, nil)
	get(KeyCustomColors, &s.CustomColors, nil)
	if err != nil {
		return p.defaults, err
	}
	s.Normalize()
	return s, nil
}

// read decodes key into dst. Plain strings are stored unquoted.
func (p *Preferences) read(ctx context.Context, key string, dst any, def any) error {
	raw, err := p.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) || (err == nil && raw == "") {
		setDefault(dst, def)
		return nil
	}
	if err != nil {
		return err
	}

	switch v := dst.(type) {
	case *string:
		*v = raw
		return nil
	case *bool:
		b, perr := strconv.ParseBool(raw)
		if perr != nil {
			appLog.Warn("malformed preference; using default", "key", key)
			setDefault(dst, def)
			return nil
		}
		*v = b
		return nil
	}
	if jerr := json.Unmarshal([]byte(raw), dst); jerr != nil {
		appLog.Warn("malformed preference; using default", "key", key, "err", jerr)
		setDefault(dst, def)
	}
	return nil
}

func setDefault(dst, def any) {
	switch v := dst.(type) {
	case *string:
		*v, _ = def.(string)
	case *bool:
		*v, _ = def.(bool)
	case *[]string:
		d, _ := def.([]string)
		*v = slices.Clone(d)
	case *map[string]bool:
		*v = nil
	case *map[string]string:
		*v = nil
	}
}

// Save writes every key. An empty disabled-filter list removes its key.
func (p *Preferences) Save(ctx context.Context, s Settings) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.save(ctx, s)
}

func (p *Preferences) save(ctx context.Context, s Settings) error {
	s.Normalize()

	if len(s.DisabledFilters) == 0 {
		if err := p.backend.Delete(ctx, KeyDisabledFilters); err != nil {
			return err
		}
	} else if err := p.writeJSON(ctx, KeyDisabledFilters, s.DisabledFilters); err != nil {
		return err
	}

	hidden := s.HiddenEvents
	if hidden == nil {
		hidden = []string{}
	}
	if err := p.writeJSON(ctx, KeyHiddenEvents, hidden); err != nil {
		return err
	}
	for _, kv := range []struct{ key, value string }{
		{KeyFirstDayOfWeek, s.FirstDayOfWeek},
		{KeyGroupSimilarEvents, strconv.FormatBool(s.GroupSimilarEvents)},
		{KeyShowSprites, strconv.FormatBool(s.ShowSprites)},
		{KeyAnimatedSprites, strconv.FormatBool(s.AnimatedSprites)},
		{KeyFontSize, s.FontSize},
		{KeyThemeMode, s.ThemeMode},
	} {
		if err := p.backend.Set(ctx, kv.key, kv.value); err != nil {
			return err
		}
	}
	if err := p.writeJSON(ctx, KeyCollapsedSections, s.CollapsedSections); err != nil {
		return err
	}
	return p.writeJSON(ctx, KeyCustomColors, s.CustomColors)
}

func (p *Preferences) writeJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.backend.Set(ctx, key, string(data))
}

// Update applies fn to the stored settings and saves the result.
func (p *Preferences) Update(ctx context.Context, fn func(*Settings)) (Settings, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.load(ctx)
	if err != nil {
		return s, err
	}
	fn(&s)
	if err := p.save(ctx, s); err != nil {
		return s, err
	}
	s.Normalize()
	return s, nil
}
