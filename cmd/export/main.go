package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"neighborly/internal/config"
	"neighborly/internal/database"
	"neighborly/internal/export"
	"neighborly/internal/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}
	logger := baseLogger.With().Str("component", "export-main").Logger()

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	exporter := export.NewExporter(db, cfg.Exports.Path, &logger)
	path, err := exporter.ExportCatalog(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("export failed")
		return err
	}

	logger.Info().Str("file_path", path).Msg("catalog exported")
	fmt.Println(path)
	return nil
}
