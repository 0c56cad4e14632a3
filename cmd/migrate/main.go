package main

import (
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"

	"qrgen/internal/pkg/logger"
	"qrgen/internal/platform/config"
	"qrgen/internal/platform/database"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	configPath := flag.String("config", config.DefaultPath, "Path to config file")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.History)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.History.DatabasePath).Msg("Failed to open history DB")
	}
	defer db.Close()

	if err := database.Migrate(db, *direction); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}

	fmt.Println("Migration completed successfully")
}
