package main

import (
	"github.com/Dhruvp18/pharma-grid-landing/internal/db"
)

func runMigrate(envFile string, up bool) error {
	cfg, logger, cleanup, err := setup(envFile)
	if err != nil {
		return err
	}
	defer cleanup()

	database, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.DBDriver, "error", err)
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	direction := "down"
	if up {
		direction = "up"
	}
	if err := db.Migrate(database, cfg.DBDriver, cfg.DBDSN, up); err != nil {
		logger.Error("migration failed", "direction", direction, "error", err)
		return err
	}
	logger.Info("migration complete", "direction", direction, "driver", cfg.DBDriver)
	return nil
}
