package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/health-insights/internal/config"
	"github.com/Rrens/health-insights/internal/logger"
	"github.com/Rrens/health-insights/internal/repository/postgres"
)

func main() {
	down := flag.Bool("down", false, "roll migrations back instead of applying them")
	steps := flag.Int("steps", 1, "number of migrations to roll back with -down")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logCloser, err := logger.Setup(cfg.Logging, os.Getenv("ENV") == "production")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if cfg.Store.Driver != "postgres" {
		log.Info().Str("driver", cfg.Store.Driver).Msg("Store migrates itself on server start, nothing to do")
		return
	}

	log.Info().Str("host", cfg.Database.Host).Int("port", cfg.Database.Port).Msg("Connecting to database")

	if *down {
		err = postgres.RollbackMigrations(cfg.Database.DSN(), *steps)
	} else {
		err = postgres.RunMigrations(cfg.Database.DSN())
	}
	if err != nil {
		log.Error().Err(err).Msg("Migration failed")
		logCloser.Close()
		os.Exit(1)
	}
}
