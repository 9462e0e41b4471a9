package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"pogocal/internal/calendar"
	"pogocal/internal/capture"
	"pogocal/internal/clock"
	"pogocal/internal/config"
	"pogocal/internal/datetime"
	"pogocal/internal/feed"
	appLog "pogocal/internal/log"
	"pogocal/internal/pokemon"
	"pogocal/internal/prefs"
	"pogocal/internal/web"
)

const version = "0.1.0"

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	dump       bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	appLog.Info("pogocal starting", "version", version)

	loc, err := datetime.LoadLocation(conf.Timezone)
	if err != nil {
		appLog.Error("invalid timezone", err, "timezone", conf.Timezone)
		os.Exit(1)
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", loc.String(),
		"refresh", conf.RefreshCron,
		"freshness_minutes", conf.FreshnessMinutes,
		"fetch_attempts", conf.FetchAttempts,
		"prefs_backend", conf.Prefs.Backend,
		"capture", conf.Capture.Enabled,
		"once", flags.once,
		"dump", flags.dump,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := feed.NewStore(
		feed.NewFetcher(conf.CacheDir, conf.FetchAttempts),
		conf.FeedURL,
		loc,
		feed.WithFreshness(time.Duration(conf.FreshnessMinutes)*time.Minute),
	)
	stats := pokemon.NewStatsStore(conf.PokemonDataURL, conf.FetchAttempts)

	backend, err := prefs.Open(conf.Prefs)
	if err != nil {
		appLog.Error("failed to open preferences backend", err, "backend", conf.Prefs.Backend)
		os.Exit(1)
	}
	if c, ok := backend.(io.Closer); ok {
		defer c.Close()
	}
	preferences := prefs.New(backend, prefs.Defaults(conf))

	ticker := clock.NewTicker(clock.Real{})
	ticks, unsubscribe := ticker.Subscribe()
	defer unsubscribe()

	svc := calendar.NewService(store,
		calendar.WithStats(stats),
		calendar.WithNow(ticker.Current),
	)

	if flags.once {
		if err := runOnce(ctx, svc, preferences, flags.dump); err != nil {
			appLog.Error("single run failed", err)
			os.Exit(1)
		}
		return
	}

	// Species data only feeds CP estimates; a failure is retried on demand.
	go func() {
		if err := stats.Load(ctx); err != nil {
			appLog.Warn("pokemon data preload failed", "err", err)
		}
	}()

	snapshot := newCapturer(conf.Capture)

	refresh := func(ctx context.Context) {
		snap := svc.Refresh(ctx)
		if snap.Error != "" {
			return
		}
		snapshot.run(ctx)
	}

	// Initial load so the first page view does not wait on the network.
	go refresh(ctx)

	sched := cron.New(cron.WithLocation(loc))
	if _, err := sched.AddFunc(conf.RefreshCron, func() { refresh(ctx) }); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	sched.Start()

	go watchDay(ctx, ticks, loc, snapshot)

	srv, err := web.NewServer(conf, web.Deps{
		Calendar:     svc,
		Prefs:        preferences,
		Stats:        stats,
		AfterRefresh: snapshot.run,
	})
	if err != nil {
		appLog.Error("failed to build web server", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              conf.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLog.Info("http server listening", "addr", "http://"+conf.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("http server failed", err)
			stop()
		}
	}()

	<-ctx.Done()
	appLog.Info("shutting down")

	<-sched.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLog.Error("http server shutdown failed", err)
	}
	appLog.Info("pogocal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/pogocal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Fetch the feed once, print a summary and exit")
	flag.BoolVar(&cfg.dump, "dump", false, "With -once, write the current month view as JSON to stdout")

	flag.Parse()

	return cfg
}

// runOnce forces a fetch and reports the outcome.
func runOnce(ctx context.Context, svc *calendar.Service, p *prefs.Preferences, dump bool) error {
	snap := svc.Refresh(ctx)
	if snap.Error != "" {
		return errors.New(snap.Error)
	}
	appLog.Info("feed loaded",
		"events", len(snap.Events),
		"from_cache", snap.FromCache,
		"fetched_at", snap.FetchedAt.Format(time.RFC3339),
	)
	if !dump {
		return nil
	}

	st, err := p.Load(ctx)
	if err != nil {
		appLog.Warn("preferences unavailable; dumping with defaults", "err", err)
	}
	now := svc.Now()
	view, err := svc.Month(ctx, now.Year(), now.Month(), st)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

// capturer serializes PNG captures; a request arriving while one runs is
// dropped.
type capturer struct {
	opts    capture.Options
	enabled bool
	mu      sync.Mutex
}

func newCapturer(c config.CaptureConfig) *capturer {
	return &capturer{opts: capture.OptionsFrom(c), enabled: c.Enabled}
}

func (c *capturer) run(ctx context.Context) {
	if !c.enabled {
		return
	}
	if !c.mu.TryLock() {
		appLog.Debug("capture already running; skipped")
		return
	}
	defer c.mu.Unlock()
	if err := capture.CalendarPNG(ctx, c.opts); err != nil {
		appLog.Error("calendar capture failed", err, "url", c.opts.URL)
	}
}

// watchDay recaptures at midnight so the highlighted day stays current.
func watchDay(ctx context.Context, ticks <-chan time.Time, loc *time.Location, c *capturer) {
	last := time.Now().In(loc)
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-ticks:
			if !ok {
				return
			}
			t = t.In(loc)
			if !datetime.SameDay(t, last) {
				appLog.Info("day changed", "date", t.Format(datetime.CalendarDate))
				c.run(ctx)
			}
			last = t
		}
	}
}
