package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"qrgen/internal/api"
	"qrgen/internal/api/flash"
	"qrgen/internal/api/handlers"
	"qrgen/internal/api/middleware"
	"qrgen/internal/engine/qr"
	"qrgen/internal/pkg/logger"
	"qrgen/internal/platform/audit"
	"qrgen/internal/platform/cache"
	"qrgen/internal/platform/config"
	"qrgen/internal/platform/database"
	"qrgen/internal/platform/metrics"
)

func main() {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []qr.Option{qr.WithMargin(cfg.Renderer.Margin)}

	// Generation history
	var historyDB *sql.DB
	var historyReader handlers.HistoryReader
	if cfg.History.Enabled {
		historyDB, err = database.Open(cfg.History)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.History.DatabasePath).Msg("Failed to open history DB")
		}
		defer historyDB.Close()

		if err := database.Migrate(historyDB, "up"); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate history DB")
		}

		history := audit.NewHistory(historyDB)
		historyReader = history
		opts = append(opts, qr.WithRecorder(history))
	}

	// Render cache
	var cachePinger handlers.Pinger
	if cfg.Cache.Enabled {
		rdb, err := cache.Connect(ctx, cfg.Cache)
		if err != nil {
			// rendering still works without the cache
			log.Warn().Err(err).Str("addr", cfg.Cache.Addr).Msg("Render cache unavailable, continuing without it")
		} else {
			defer rdb.Close()
			renderCache := cache.NewRenderCache(rdb, cfg.Cache.TTL)
			cachePinger = renderCache
			opts = append(opts, qr.WithCache(renderCache))
		}
	}

	if err := os.MkdirAll(cfg.Storage.DefaultDir(), 0755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Storage.DefaultDir()).Msg("Failed to create output folder")
	}

	generator := qr.NewGenerator(qr.NewHTTPRenderer(cfg.Renderer.Timeout), cfg.Renderer.Endpoint, opts...)

	flashStore, err := flash.NewStore(cfg.Server.SecretKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up flash messages")
	}

	m := metrics.New()
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	deps := &api.Dependencies{
		PageHandler:       handlers.NewPageHandler(cfg.Storage, flashStore),
		QRHandler:         handlers.NewQRHandler(generator, cfg.Storage, flashStore, m),
		FileHandler:       handlers.NewFileHandler(cfg.Storage, flashStore),
		HealthHandler:     handlers.NewHealthHandler(historyDB, cachePinger, cfg.Storage.DefaultDir()),
		MetricsHandler:    handlers.NewMetricsHandler(m),
		HistoryHandler:    handlers.NewHistoryHandler(historyReader),
		RateLimiter:       rateLimiter,
		GeneratePerMinute: cfg.RateLimit.GeneratePerMinute,
		Metrics:           m,
		StaticDir:         cfg.Server.StaticDir,
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Bool("restricted", cfg.Storage.Restricted).
			Str("output_dir", cfg.Storage.DefaultDir()).
			Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("Server failed")
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
