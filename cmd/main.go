package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openscout/scoutcore/internal/adapters/http/ops"
	"github.com/openscout/scoutcore/internal/adapters/repository"
	"github.com/openscout/scoutcore/internal/adapters/tba"
	"github.com/openscout/scoutcore/internal/app"
	"github.com/openscout/scoutcore/internal/config"
	"github.com/openscout/scoutcore/internal/demo"
	"github.com/openscout/scoutcore/internal/domain/assign"
	"github.com/openscout/scoutcore/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since the logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Pick the store: sqlite when a path is configured, in-memory otherwise.
	var store repository.Store
	if cfg.DBPath != "" {
		sqlStore, err := repository.OpenSQL(cfg.DBPath)
		if err != nil {
			log.Error(ctx, "failed to open database", logger.String("db_path", cfg.DBPath), logger.Error(err))
			return
		}
		defer func() {
			if err := sqlStore.Close(); err != nil {
				log.Error(ctx, "failed to close database", logger.Error(err))
			}
		}()
		store = sqlStore
		log.Info(ctx, "using sqlite store", logger.String("db_path", cfg.DBPath))
	} else {
		store = repository.NewMemStore()
		log.Info(ctx, "using in-memory store")
	}

	if cfg.DemoSeed {
		if err := demo.Seed(ctx, store, demo.DefaultOrgKey, demo.DefaultYear, demo.DefaultEventKey); err != nil {
			log.Error(ctx, "failed to seed demo event", logger.Error(err))
			return
		}
		log.Info(ctx, "seeded demo event",
			logger.String("org_key", demo.DefaultOrgKey),
			logger.String("event_key", demo.DefaultEventKey))
	}

	opts := []app.Option{
		app.WithLogger(log.Named("app")),
		app.WithEMAAlpha(cfg.EMAAlpha),
		app.WithBlockConfig(assign.BlockConfig{
			BlockSize:      cfg.BlockSize,
			PoolSize:       cfg.ScoutPoolSize,
			BreakThreshold: cfg.BreakThresholdSeconds,
		}),
	}
	if cfg.TBAAuthKey != "" {
		opts = append(opts, app.WithScheduleSource(tba.New(cfg.TBAAuthKey, tba.WithBaseURL(cfg.TBABaseURL))))
	}
	svc := app.New(store, opts...)

	// Ops HTTP surface: health, metrics, and engine trigger routes.
	mux := http.NewServeMux()
	ops.NewHandler(svc).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting ops HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "stopped")
}
