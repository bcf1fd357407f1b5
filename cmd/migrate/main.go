package main

import (
	"context"
	"os"
	"strings"

	"github.com/fhuszti/videonft-ms-go/internal/config"
	"github.com/fhuszti/videonft-ms-go/internal/db"
	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/migration"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init()

	// the sessions migration creates its table and indexes in one file
	dsn := cfg.MariaDBDSN
	if strings.Contains(dsn, "?") {
		dsn += "&multiStatements=true"
	} else {
		dsn += "?multiStatements=true"
	}
	database, err := db.New(dsn, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}

	err = migration.MigrateUp(database.DB)
	if closeErr := database.Close(); closeErr != nil {
		logger.Warnf(ctx, "DB close error: %v", closeErr)
	}
	if err != nil {
		logger.Errorf(ctx, "❌  Migration up failed: %v", err)
		os.Exit(1)
	}

	logger.Info(ctx, "✅  Sessions schema is up to date")
}
