package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"upiqr/internal/engine/analytics"
	"upiqr/internal/engine/links"
	"upiqr/internal/pkg/logger"
	"upiqr/internal/platform/config"
	"upiqr/internal/platform/database"
	"upiqr/internal/workers"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging, "upiqr-worker")

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := workers.NewRunner(
		links.NewRepository(db),
		analytics.NewService(analytics.NewRepository(db)),
		cfg.Workers.ExpiryInterval,
	)
	runner.Run(ctx)
}
