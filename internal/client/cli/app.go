package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/grocerycompare/internal/client/cache"
	"github.com/dmitrijs2005/grocerycompare/internal/client/client"
	"github.com/dmitrijs2005/grocerycompare/internal/client/config"
	"github.com/dmitrijs2005/grocerycompare/internal/client/models"
	"github.com/dmitrijs2005/grocerycompare/internal/client/repositories/searches"
	"github.com/dmitrijs2005/grocerycompare/internal/client/services"
	"github.com/dmitrijs2005/grocerycompare/internal/client/session"
	"github.com/dmitrijs2005/grocerycompare/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// sessionView is the read side of the session used by the REPL.
type sessionView interface {
	Guard() error
	User() *models.User
	State() session.State
}

type App struct {
	config  *config.Config
	auth    services.AuthService
	catalog services.CatalogService
	session sessionView
	log     logging.Logger

	newSuggester     func(onChange func(services.Snapshot)) *services.Suggester
	suggestMinLength int

	reader *bufio.Reader
	out    io.Writer

	mode atomic.Value // Mode

	mu      sync.Mutex
	current *models.Product // last searched or viewed product, target of predict

	closers []func() error
}

// NewApp opens the local store and builds the services described by c.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	a := &App{
		config: c,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	a.closers = append(a.closers, db.Close)

	sess := session.NewManager(db, log.With("component", "session"))

	metrics := client.NewMetrics()
	apiClient := client.NewHTTPClient(c.APIURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithTokenSource(sess),
		client.WithUnauthorizedHandler(sess.HandleUnauthorized),
		client.WithMetrics(metrics),
		client.WithLogger(log.With("component", "api")),
	)

	suggestCache := cache.NewSuggestions(a.suggestStore(ctx), c.SuggestCacheTTL)

	a.session = sess
	a.auth = services.NewAuthService(apiClient, sess, log.With("component", "auth"))
	a.catalog = services.NewCatalogService(apiClient, searches.NewSQLiteRepository(db), log.With("component", "catalog"))
	a.suggestMinLength = c.SuggestMinLength
	if a.suggestMinLength <= 0 {
		a.suggestMinLength = services.DefaultSuggestMinLength
	}
	a.newSuggester = func(onChange func(services.Snapshot)) *services.Suggester {
		return services.NewSuggester(apiClient, services.SuggesterOptions{
			Delay:     c.SuggestDelay,
			MinLength: c.SuggestMinLength,
			Cache:     suggestCache,
			Log:       log.With("component", "suggest"),
			OnChange:  onChange,
		})
	}

	if c.MetricsAddr != "" {
		a.serveMetrics(ctx, c.MetricsAddr, metrics)
	}

	return a, nil
}

// suggestStore picks Redis when configured and reachable, else memory.
func (a *App) suggestStore(ctx context.Context) cache.BytesCache {
	if a.config.RedisAddr == "" {
		return cache.NewTTLCache()
	}

	rc := cache.NewRedisCache(cache.RedisConfig{Addr: a.config.RedisAddr, Prefix: "grocery:", DialTimeout: 2 * time.Second})
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pctx); err != nil {
		a.log.Warn(ctx, "redis unavailable, using in-memory suggestion cache", "addr", a.config.RedisAddr, "error", err)
		_ = rc.Close()
		return cache.NewTTLCache()
	}
	a.closers = append(a.closers, rc.Close)
	return rc
}

func (a *App) serveMetrics(ctx context.Context, addr string, m *client.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error(ctx, "metrics server stopped", "addr", addr, "error", err)
		}
	}()
	a.closers = append(a.closers, func() error {
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
}

// Run checks the stored session, starts the connectivity watcher and
// blocks in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	printlnFn("Grocery price comparison (type 'help' for commands)")

	go func() {
		if err := a.auth.Bootstrap(ctx); err != nil {
			a.log.Warn(ctx, "session bootstrap", "error", err)
		}
	}()
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close releases the store, the cache and the metrics server.
func (a *App) Close() {
	if a.catalog != nil {
		a.catalog.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn(context.Background(), "close", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) Mode() Mode {
	m, _ := a.mode.Load().(Mode)
	return m
}

func (a *App) setMode(mode Mode) {
	if old := a.mode.Swap(mode); old != mode {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

// StartOnlineStatusWatcher pings the backend every interval and flips the
// mode shown in the prompt. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := a.auth.Ping(pctx)
		cancel()
		if err != nil {
			a.setMode(ModeOffline)
		} else {
			a.setMode(ModeOnline)
		}
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	s := ""
	switch a.session.State() {
	case session.StateInit:
		s = "loading"
	case session.StateAuthenticated:
		if u := a.session.User(); u != nil {
			s = u.Username
		}
	}
	if m := a.Mode(); m != "" {
		if s != "" {
			s += " "
		}
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) guard() error {
	return a.session.Guard()
}

func (a *App) setCurrent(p *models.Product) {
	a.mu.Lock()
	a.current = p
	a.mu.Unlock()
}

func (a *App) currentProduct() *models.Product {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}
