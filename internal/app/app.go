// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/apartsfinder/afind/internal/auth"
	"github.com/apartsfinder/afind/internal/config"
	"github.com/apartsfinder/afind/internal/driver"
	"github.com/apartsfinder/afind/internal/driver/chrome"
	"github.com/apartsfinder/afind/internal/driver/static"
	"github.com/apartsfinder/afind/internal/engine"
	"github.com/apartsfinder/afind/internal/observer"
	"github.com/apartsfinder/afind/internal/ratelimit"
	"github.com/apartsfinder/afind/internal/reqctx"
	"github.com/apartsfinder/afind/internal/site"
	"github.com/apartsfinder/afind/internal/storage"
	"github.com/apartsfinder/afind/internal/utils/headers"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config  *config.Config
	Logger  *zerolog.Logger
	Limiter ratelimit.Limiter

	// SessionStore holds cookie sessions. Created on first use when nil.
	SessionStore *auth.Store

	// ProgressOut receives the progress spinner. Nil disables it.
	ProgressOut io.Writer

	sites     map[string]site.Site
	mu        sync.Mutex
	store     *storage.PostgresStore
	startTime time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Creates the per-host navigation limiter
//   - Loads additional site descriptors from the sites file
//
// Browsers and database connections are opened on demand.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := newLogger(cfg)
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	limiter := ratelimit.NewHostLimiter(cfg.NavigationRPS, cfg.NavigationBurst)
	logger.Debug().
		Float64("navigation_rps", cfg.NavigationRPS).
		Int("navigation_burst", cfg.NavigationBurst).
		Msg("Navigation limiter initialized")

	sites := map[string]site.Site{}
	if cfg.SitesFile != "" {
		descriptors, err := site.LoadFile(cfg.SitesFile)
		if err != nil {
			return nil, err
		}
		for _, d := range descriptors {
			sites[d.Name()] = d
		}
		logger.Debug().
			Str("file", cfg.SitesFile).
			Int("sites", len(descriptors)).
			Msg("Site descriptors loaded")
	}

	a := &Application{
		Config:    cfg,
		Logger:    &logger,
		Limiter:   limiter,
		sites:     sites,
		startTime: time.Now(),
	}
	if !cfg.JSONLog && cfg.LogLevel != "error" && isatty.IsTerminal(os.Stderr.Fd()) {
		a.ProgressOut = os.Stderr
	}

	logger.Info().Msg("Application initialized successfully")
	return a, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	// "info" stays quiet: faults still show as warnings, progress comes from the spinner
	level := zerolog.WarnLevel
	switch cfg.LogLevel {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = os.Stderr
	if !cfg.JSONLog {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// Site returns the site with the given name. Sites from the sites file
// shadow built-in ones.
func (a *Application) Site(name string) (site.Site, error) {
	if s, ok := a.sites[name]; ok {
		return s, nil
	}
	return site.Lookup(name)
}

// SiteNames returns every site name the application can search, sorted
func (a *Application) SiteNames() []string {
	seen := map[string]bool{}
	for _, name := range site.Names() {
		seen[name] = true
	}
	for name := range a.sites {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sessions returns the cookie session store, creating it on first use
func (a *Application) Sessions() (*auth.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.SessionStore == nil {
		store, err := auth.NewStore()
		if err != nil {
			return nil, err
		}
		a.SessionStore = store
		a.Logger.Debug().Str("backend", store.Backend()).Msg("Session store initialized")
	}
	return a.SessionStore, nil
}

// Store returns the Postgres store, connecting on first use.
// It returns nil without error when no database is configured.
func (a *Application) Store(ctx context.Context) (*storage.PostgresStore, error) {
	if a.Config.DatabaseURL == "" {
		return nil, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store == nil {
		store, err := storage.NewPostgresStore(ctx, a.Config.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.store = store
		a.Logger.Debug().Msg("Database connection established")
	}
	return a.store, nil
}

// session loads the configured cookie session, or nil when none is set
func (a *Application) session() (*auth.SessionData, error) {
	if a.Config.Session == "" {
		return nil, nil
	}
	store, err := a.Sessions()
	if err != nil {
		return nil, err
	}
	data, err := store.Load(a.Config.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %q: %w", a.Config.Session, err)
	}
	a.Logger.Debug().
		Str("session", data.Name).
		Int("cookies", len(data.Cookies)).
		Msg("Session loaded")
	return data, nil
}

// DriverFactory returns the factory for the configured driver kind
func (a *Application) DriverFactory() (driver.Factory, error) {
	cfg := a.Config
	sess, err := a.session()
	if err != nil {
		return nil, err
	}
	extra, err := headers.Parse(cfg.Headers)
	if err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case config.DriverStatic:
		opts := static.Options{
			UserAgent: cfg.UserAgent,
			Proxy:     cfg.Proxy,
			Timeout:   cfg.Timeout,
			Headers:   extra,
		}
		if sess != nil {
			opts.Headers = headers.Merge(extra, map[string]string{"Cookie": sess.Header()})
		}
		return static.Factory(opts), nil
	case config.DriverChrome, "":
		opts := chrome.Options{
			Headless:   cfg.Headless,
			ChromePath: cfg.ChromePath,
			UserAgent:  cfg.UserAgent,
			Proxy:      cfg.Proxy,
			Headers:    extra,
		}
		if sess != nil {
			opts.Cookies = sess.CookieParams()
		}
		return chrome.Factory(opts), nil
	default:
		return nil, fmt.Errorf("unknown driver: %s", cfg.Driver)
	}
}

// Observer builds the observer for one request: structured log events
// tagged with the request id, plus the spinner on a terminal.
func (a *Application) Observer(ctx context.Context) observer.Observer {
	obs := observer.Multi{observer.NewLog(reqctx.Logger(ctx))}
	if a.ProgressOut != nil {
		obs = append(obs, observer.NewProgress(a.ProgressOut))
	}
	return obs
}

// Runner builds a session runner from the configuration
func (a *Application) Runner() (*engine.Runner, error) {
	factory, err := a.DriverFactory()
	if err != nil {
		return nil, err
	}

	cfg := a.Config
	r := engine.NewRunner(factory, cfg.TeardownDelay,
		engine.WithViewport(cfg.Width, cfg.Height),
		engine.WithImplicitWait(cfg.ImplicitWait),
		engine.WithLimiter(a.Limiter),
	)
	return r.WithObserverFunc(a.Observer), nil
}

// Close gracefully shuts down the application and all its resources.
// Any errors during shutdown are logged but do not prevent other shutdown steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Info().Msg("Shutting down application")

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing database")
		}
		a.store = nil
	}

	a.Logger.Info().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
