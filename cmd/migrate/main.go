package main

import (
	"flag"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"upiqr/internal/pkg/logger"
	"upiqr/internal/platform/config"
	"upiqr/internal/platform/database"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	dir := flag.String("dir", "", "Migrations directory (defaults to database.migrations_dir)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging, "upiqr-migrate")

	if *dir == "" {
		*dir = cfg.Database.MigrationsDir
	}

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	applied, err := database.Migrate(db, *dir)
	if err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	fmt.Printf("Migration completed successfully (%d applied)\n", len(applied))
}
