package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/newsdesk-analytics/internal/config"
	"github.com/heartmarshall/newsdesk-analytics/internal/transport/middleware"
	"github.com/heartmarshall/newsdesk-analytics/internal/transport/rest"
)

// Run is the server entry point. It loads configuration, wires the
// dependency graph and serves HTTP until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func Run(ctx context.Context, configPath string) error {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      NewHandler(c, cfg, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("stopped")
	return nil
}

// NewHandler builds the HTTP handler tree. Metrics sits innermost so the
// matched route pattern is visible to it.
func NewHandler(c *Container, cfg *config.Config, logger *slog.Logger) http.Handler {
	checks := map[string]rest.Checker{
		"database":   rest.CheckerFunc(c.Pool.Ping),
		"migrations": c.Migrator,
	}

	h := rest.Handlers{
		Health:    rest.NewHealthHandler(checks, BuildVersion()),
		Uploads:   rest.NewUploadHandler(c.Identity, c.Ingestion, logger),
		Employees: rest.NewEmployeeHandler(c.Directory, logger),
		Records:   rest.NewRecordsHandler(c.Records, logger),
		KPI:       rest.NewKPIHandler(c.KPI, logger),
	}

	mws := []middleware.Middleware{
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.BodyLimit(cfg.Server.MaxBodyBytes),
	}
	if c.Metrics != nil {
		h.Metrics = c.Metrics.Handler()
		mws = append(mws, middleware.Metrics(c.Metrics))
	}

	return middleware.Chain(mws...)(rest.NewRouter(h))
}
