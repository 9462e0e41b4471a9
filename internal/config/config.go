package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFeedURL        = "https://raw.githubusercontent.com/bigfoott/ScrapedDuck/data/events.min.json"
	DefaultPokemonDataURL = "https://raw.githubusercontent.com/mgrann03/pokemon-resources/refs/heads/main/pogo_pkm.min.json"
)

// PrefsConfig selects where user preferences are persisted.
type PrefsConfig struct {
	// Backend is "file" (default) or "redis".
	Backend string `yaml:"backend" json:"backend"`
	// Path is the JSON file used by the file backend.
	Path string `yaml:"path" json:"path"`
	// RedisURL is a redis:// URL used by the redis backend.
	RedisURL string `yaml:"redis_url" json:"redis_url"`
}

// CaptureConfig controls the optional PNG snapshot of the calendar page.
type CaptureConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	URL        string `yaml:"url" json:"url"`
	OutputPath string `yaml:"output_path" json:"output_path"`
	Width      int    `yaml:"width" json:"width"`
	Height     int    `yaml:"height" json:"height"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API and calendar page.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone events are displayed in (e.g. "America/New_York").
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart is the default first day of the week ("sunday" .. "saturday").
	// A stored user preference overrides it.
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron is a cron-style schedule for background feed refreshes.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	FeedURL        string `yaml:"feed_url" json:"feed_url"`
	PokemonDataURL string `yaml:"pokemon_data_url" json:"pokemon_data_url"`

	// CacheDir holds the ETag/Last-Modified feed cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// FreshnessMinutes is how long a fetched feed is served without refetching.
	FreshnessMinutes int `yaml:"freshness_minutes" json:"freshness_minutes"`

	// FetchAttempts bounds HTTP attempts per fetch. 1 disables automatic retry.
	FetchAttempts int `yaml:"fetch_attempts" json:"fetch_attempts"`

	// GroupSimilarEvents is the default for the grouping toggle.
	GroupSimilarEvents bool `yaml:"group_similar_events" json:"group_similar_events"`

	// AnimatedSprites is the default for the animated sprite toggle.
	AnimatedSprites bool `yaml:"animated_sprites" json:"animated_sprites"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	Prefs   PrefsConfig   `yaml:"prefs" json:"prefs"`
	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

var weekdays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:             "127.0.0.1:8080",
		Timezone:           "Local",
		WeekStart:          "sunday",
		RefreshCron:        "*/10 * * * *",
		FeedURL:            DefaultFeedURL,
		PokemonDataURL:     DefaultPokemonDataURL,
		CacheDir:           "./var/feed-cache",
		FreshnessMinutes:   10,
		FetchAttempts:      1,
		GroupSimilarEvents: true,
		AnimatedSprites:    false,
		LogLevel:           "info",
		Prefs: PrefsConfig{
			Backend: "file",
			Path:    "./var/prefs.json",
		},
		Capture: CaptureConfig{
			Enabled:    false,
			URL:        "http://127.0.0.1:8080/calendar",
			OutputPath: "./var/preview.png",
			Width:      1280,
			Height:     960,
		},
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart))
	if WeekdayIndex(c.WeekStart) < 0 {
		// Unknown value; fall back to sunday to avoid surprising layouts.
		c.WeekStart = def.WeekStart
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.FeedURL == "" {
		c.FeedURL = def.FeedURL
	}
	if c.PokemonDataURL == "" {
		c.PokemonDataURL = def.PokemonDataURL
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.FreshnessMinutes <= 0 {
		c.FreshnessMinutes = def.FreshnessMinutes
	}
	if c.FetchAttempts <= 0 {
		c.FetchAttempts = def.FetchAttempts
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	switch c.Prefs.Backend {
	case "file", "redis":
	default:
		c.Prefs.Backend = "file"
	}
	if c.Prefs.Path == "" {
		c.Prefs.Path = def.Prefs.Path
	}
	if c.Capture.URL == "" {
		c.Capture.URL = def.Capture.URL
	}
	if c.Capture.OutputPath == "" {
		c.Capture.OutputPath = def.Capture.OutputPath
	}
	if c.Capture.Width <= 0 {
		c.Capture.Width = def.Capture.Width
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = def.Capture.Height
	}
}

// WeekdayIndex returns 0 for sunday through 6 for saturday, or -1.
func WeekdayIndex(name string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, d := range weekdays {
		if d == name {
			return i
		}
	}
	return -1
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600 perms
//     and returned.
//   - If the file exists, it is unmarshalled and normalized.
//   - In both cases environment overrides are applied last.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				cfg.ApplyEnv()
				return cfg, err
			}
			cfg.ApplyEnv()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	cfg.ApplyEnv()

	return &cfg, nil
}

// ApplyEnv loads a .env file from the working directory when present and
// applies POGOCAL_* overrides on top of the file values.
func (c *Config) ApplyEnv() {
	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	if v := os.Getenv("POGOCAL_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("POGOCAL_FEED_URL"); v != "" {
		c.FeedURL = v
	}
	if v := os.Getenv("POGOCAL_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("POGOCAL_REDIS_URL"); v != "" {
		c.Prefs.Backend = "redis"
		c.Prefs.RedisURL = v
	}
	if v := os.Getenv("POGOCAL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data, ".pogocal-config-*.tmp")
}

// WriteFileAtomic writes data to a temp file next to path and renames it over
// path with 0600 permissions.
func WriteFileAtomic(path string, data []byte, pattern string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
