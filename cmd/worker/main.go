package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"qrgen/internal/pkg/logger"
	"qrgen/internal/platform/config"
	"qrgen/internal/workers"
)

func main() {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("dir", cfg.Storage.DefaultDir()).
		Dur("preview_ttl", cfg.Storage.PreviewTTL).
		Dur("interval", cfg.Storage.PurgeInterval).
		Msg("Starting qrgen background workers")

	workers.RunPurger(ctx, cfg.Storage.DefaultDir(), cfg.Storage.PreviewTTL, cfg.Storage.PurgeInterval)

	log.Info().Msg("Workers stopped")
}
