package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/hospivibe/internal/client/client"
	"github.com/dmitrijs2005/hospivibe/internal/client/config"
	"github.com/dmitrijs2005/hospivibe/internal/client/forms"
	"github.com/dmitrijs2005/hospivibe/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/hospivibe/internal/client/routes"
	"github.com/dmitrijs2005/hospivibe/internal/client/services"
	"github.com/dmitrijs2005/hospivibe/internal/client/session"
	"github.com/dmitrijs2005/hospivibe/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App is the CLI front end: it owns the services and renders their results.
type App struct {
	config *config.Config
	log    logging.Logger
	now    func() time.Time

	api          client.Client
	auth         *services.AuthService
	appointments *services.AppointmentService
	nurse        *services.NurseService
	prefs        services.PreferenceStore
	registry     *prometheus.Registry
	forms        *forms.Validator

	reader  *bufio.Reader
	out     io.Writer
	closers []func() error

	mu    sync.Mutex
	mode  Mode
	route routes.Route
}

// deps are the collaborators NewApp wires from configuration. Tests build
// them directly.
type deps struct {
	api      client.Client
	store    session.Store
	prefs    services.PreferenceStore
	registry *prometheus.Registry
	now      func() time.Time
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp wires storage, the backend client and the services from cfg and
// restores the persisted session.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	var (
		store   session.Store
		prefs   services.PreferenceStore
		closers []func() error
	)

	switch cfg.SessionBackend {
	case config.BackendRedis:
		rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := rc.Ping(ctx).Err(); err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		store = session.NewRedisStore(rc, cfg.RedisPrefix)
		prefs = metadata.NewRedisRepository(rc, cfg.RedisPrefix)
		closers = append(closers, rc.Close)
	default:
		db, err := client.InitDatabase(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		store = session.NewSQLiteStore(db)
		prefs = metadata.NewSQLiteRepository(db)
		closers = append(closers, db.Close)
	}

	metrics := client.NewMetrics()
	reg := prometheus.NewRegistry()
	if err := metrics.RegisterCollectors(reg); err != nil {
		closeAll(closers)
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	api, err := client.NewHTTPClient(cfg.APIURL, log,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		client.WithMetrics(metrics),
	)
	if err != nil {
		closeAll(closers)
		return nil, err
	}

	a := newApp(cfg, log, deps{
		api:      api,
		store:    store,
		prefs:    prefs,
		registry: reg,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	})
	a.closers = append(closers, a.closers...)
	api.SetTokenSource(a.auth)

	if err := a.start(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// start restores the persisted session and then tries once to bring the
// stored user up to date with the backend. Only the restore can fail.
func (a *App) start(ctx context.Context) error {
	if err := a.auth.Restore(ctx); err != nil {
		return err
	}
	if !a.auth.Snapshot().IsAuthenticated {
		return nil
	}

	rctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.auth.Refresh(rctx); err != nil {
		a.log.Debug(ctx, "continuing with stored session", "error", err)
	}
	return nil
}

func newApp(cfg *config.Config, log logging.Logger, d deps) *App {
	if d.now == nil {
		d.now = time.Now
	}
	if d.registry == nil {
		d.registry = prometheus.NewRegistry()
	}

	a := &App{
		config:   cfg,
		log:      log,
		now:      d.now,
		api:      d.api,
		prefs:    d.prefs,
		registry: d.registry,
		reader:   d.reader,
		out:      d.out,
		route:    routes.Login,
		closers:  []func() error{d.api.Close},
	}

	fv := forms.New(d.now)
	a.forms = fv
	a.auth = services.NewAuthService(d.api, d.store, log,
		services.WithNavigator(a),
		services.WithLogoutOnUnauthorized(cfg.LogoutOnUnauthorized),
		services.WithClock(d.now),
	)
	a.appointments = services.NewAppointmentService(d.api, a.auth, fv)
	a.nurse = services.NewNurseService(d.api, a.auth, fv)
	return a
}

// Close releases the backend client and storage.
func (a *App) Close() error {
	err := closeAll(a.closers)
	a.closers = nil
	return err
}

// closeAll runs closers in reverse order and returns the first error.
func closeAll(closers []func() error) error {
	var first error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Navigate implements services.Navigator. The route is resolved through the
// guards so the CLI never shows a screen the session may not see.
func (a *App) Navigate(r routes.Route) {
	resolved := a.auth.Snapshot().Route(r)
	a.mu.Lock()
	a.route = resolved
	a.mu.Unlock()
	a.log.Debug(context.Background(), "navigate", "wanted", r, "route", resolved)
}

func (a *App) currentRoute() routes.Route {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

// checkOnline pings the backend once and updates the mode.
func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the backend every interval until ctx is
// done. It only updates the connectivity indicator; the session is never
// touched.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) printf(format string, args ...any) {
	_, _ = printlnFn(fmt.Sprintf(format, args...))
}
