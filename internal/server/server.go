// Package server runs the transient application server the install steps
// need before tenant provisioning can begin.
//
// The server opens the data store, serves /healthz and /metrics, and is
// considered ready once /healthz answers 200.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/imamik/adapt-install/internal/store"
	"github.com/imamik/adapt-install/internal/util/retry"
)

// DefaultAddr binds an ephemeral loopback port.
const DefaultAddr = "127.0.0.1:0"

// OpenFunc opens the data store for the given connection settings.
type OpenFunc func(ctx context.Context, cfg store.DBConfig) (store.Store, error)

// OpenPostgres opens the gorm/PostgreSQL store.
func OpenPostgres(ctx context.Context, cfg store.DBConfig) (store.Store, error) {
	return store.Open(ctx, cfg)
}

// Options configures the server.
type Options struct {
	Addr     string
	Registry *prometheus.Registry
	Log      logr.Logger
	// ReadyTimeout bounds the readiness wait. Zero waits until the server
	// answers or ctx is done.
	ReadyTimeout time.Duration
}

// App is the transient application server.
type App struct {
	opts Options
	open OpenFunc

	echo  *echo.Echo
	store store.Store
	addr  string
	done  chan error
}

// New creates a server that opens its store with open.
func New(opts Options, open OpenFunc) *App {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if open == nil {
		open = OpenPostgres
	}
	return &App{opts: opts, open: open}
}

// Start opens the store, starts serving and blocks until the server is ready.
func (a *App) Start(ctx context.Context, cfg store.DBConfig) (store.Store, error) {
	if a.echo != nil {
		return nil, errors.New("server already started")
	}

	s, err := a.open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", a.opts.Addr)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", a.opts.Addr, err)
	}

	e := a.routes(s)
	e.Listener = ln

	a.echo = e
	a.store = s
	a.addr = ln.Addr().String()
	a.done = make(chan error, 1)

	go func() {
		err := e.Start("")
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		a.done <- err
	}()

	a.opts.Log.Info("waiting for application server", "addr", a.addr)
	if err := a.waitReady(ctx); err != nil {
		_ = a.Stop(context.Background())
		return nil, fmt.Errorf("application server did not become ready: %w", err)
	}
	a.opts.Log.Info("application server ready", "addr", a.addr)
	return s, nil
}

// URL returns the base URL of a started server.
func (a *App) URL() string {
	if a.addr == "" {
		return ""
	}
	return "http://" + a.addr
}

// Stop shuts the server down and closes the store.
func (a *App) Stop(ctx context.Context) error {
	if a.echo == nil {
		return nil
	}

	var errs error
	if err := a.echo.Shutdown(ctx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to stop server: %w", err))
	}
	if err := <-a.done; err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := a.store.Close(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to close store: %w", err))
	}

	a.echo = nil
	a.store = nil
	a.addr = ""
	return errs
}

func (a *App) routes(s store.Store) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestLogger(a.opts.Log))

	e.GET("/healthz", func(c echo.Context) error {
		if err := s.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	reg := a.opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	return e
}

func (a *App) waitReady(ctx context.Context) error {
	client := &http.Client{Timeout: 2 * time.Second}
	url := a.URL() + "/healthz"

	return retry.Poll(ctx, func(ctx context.Context) error {
		select {
		case err := <-a.done:
			a.done <- err
			return retry.Fatal(fmt.Errorf("server exited: %w", err))
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Fatal(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("health check returned %d", resp.StatusCode)
		}
		return nil
	}, retry.WithTimeout(a.opts.ReadyTimeout))
}

func requestLogger(log logr.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			log.V(1).Info("http request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"latency", time.Since(start),
			)
			return err
		}
	}
}
