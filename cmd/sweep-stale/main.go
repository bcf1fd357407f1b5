package main

import (
	"context"
	"os"

	"github.com/fhuszti/videonft-ms-go/internal/cache"
	"github.com/fhuszti/videonft-ms-go/internal/config"
	"github.com/fhuszti/videonft-ms-go/internal/db"
	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/repository/mariadb"
	"github.com/fhuszti/videonft-ms-go/internal/storage"
	sessionSvc "github.com/fhuszti/videonft-ms-go/internal/usecase/session"
)

// sweep-stale deletes sessions nobody touched for SESSION_TTL. Run it from cron.
func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init()

	database, err := db.New(cfg.MariaDBDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Warnf(ctx, "DB close error: %v", err)
		}
	}()

	client, err := storage.NewMinioClient(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize MinIO client: %v", err)
		os.Exit(1)
	}
	strg, err := client.WithBucket(ctx, cfg.StagingBucket)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize bucket %q: %v", cfg.StagingBucket, err)
		os.Exit(1)
	}

	var ca port.Cache = cache.NewNoop()
	if cfg.RedisAddr != "" {
		ca = cache.NewCache(cfg.RedisAddr, cfg.RedisPassword)
	}

	sweeper := sessionSvc.NewStaleSweeper(mariadb.NewSessionRepository(database.DB), ca, strg, sessionSvc.Config{
		SessionTTL: cfg.SessionTTL,
	})
	if err := sweeper.SweepStale(ctx); err != nil {
		logger.Errorf(ctx, "❌  Stale session sweep failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "✅  Stale session sweep completed")
}
