package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fhuszti/videonft-ms-go/internal/cache"
	"github.com/fhuszti/videonft-ms-go/internal/chain"
	"github.com/fhuszti/videonft-ms-go/internal/config"
	"github.com/fhuszti/videonft-ms-go/internal/db"
	workerHandler "github.com/fhuszti/videonft-ms-go/internal/handler/worker"
	"github.com/fhuszti/videonft-ms-go/internal/livepeer"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/repository/mariadb"
	"github.com/fhuszti/videonft-ms-go/internal/storage"
	"github.com/fhuszti/videonft-ms-go/internal/task"
	sessionSvc "github.com/fhuszti/videonft-ms-go/internal/usecase/session"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fhuszti/videonft-ms-go/internal/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}
	if cfg.RedisAddr == "" {
		logger.Error(ctx, "⚠️  REDIS_ADDR must be set to run the worker")
		os.Exit(1)
	}

	logger.Init()

	database := initDb(cfg)
	strg := initStorage(cfg)

	minter, err := chain.Dial(ctx, cfg.ChainRPCURL, cfg.ContractAddress, cfg.MinterPrivateKey, cfg.AllowedChainIDs)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize minter: %v", err)
		os.Exit(1)
	}
	logger.Infof(ctx, "✅  Minting from %s", minter.Wallet())

	repo := mariadb.NewSessionRepository(database.DB)
	ca := cache.NewCache(cfg.RedisAddr, cfg.RedisPassword)
	video := livepeer.NewClient(cfg.LivepeerAPIURL, cfg.LivepeerAPIKey, nil)
	runSvc := sessionSvc.NewSessionRunner(repo, ca, strg, video, minter, sessionSvc.Config{
		ExplorerBaseURL: cfg.ExplorerBaseURL,
		MaxUploadBytes:  cfg.MaxUploadBytes,
		PollInterval:    cfg.PollInterval,
		ProgressEvery:   cfg.ProgressEvery,
		SessionTTL:      cfg.SessionTTL,
		ViewTTL:         cfg.SessionViewTTL,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(task.TypeRunSession, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseRunSessionPayload(t)
		if err != nil {
			return err
		}
		return workerHandler.RunSessionHandler(ctx, p, runSvc)
	})

	metricsSrv := serveMetrics(ctx, cfg.MetricsPort)
	runWorker(ctx, mux, cfg, database, metricsSrv)
}

func initDb(cfg *config.Settings) *db.Database {
	ctx := context.Background()
	logger.Info(ctx, "initialising database...")

	database, err := db.New(cfg.MariaDBDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}
	return database
}

func initStorage(cfg *config.Settings) port.Storage {
	ctx := context.Background()
	client, err := storage.NewMinioClient(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize MinIO client: %v", err)
		os.Exit(1)
	}

	strg, err := client.WithBucket(ctx, cfg.StagingBucket)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize bucket %q: %v", cfg.StagingBucket, err)
		os.Exit(1)
	}
	return strg
}

func serveMetrics(ctx context.Context, port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + strconv.Itoa(port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Infof(ctx, "📈 Metrics listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "❌  Metrics listen error: %v", err)
		}
	}()
	return srv
}

func runWorker(ctx context.Context, mux *asynq.ServeMux, cfg *config.Settings, database *db.Database, metricsSrv *http.Server) {
	srv := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}, asynq.Config{
		Concurrency:     cfg.WorkerConcurrency,
		ShutdownTimeout: 30 * time.Second,
	})

	// Run server in background
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Errorf(context.Background(), "❌  Worker failed: %v", err)
			os.Exit(1)
		}
	}()
	logger.Info(ctx, "🚀 Worker started")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// stop accepting new tasks; in-flight runs get ShutdownTimeout to finish
	srv.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf(ctx, "metrics shutdown error: %v", err)
	}

	if err := database.Close(); err != nil {
		logger.Warnf(ctx, "DB close error: %v", err)
	}
	logger.Info(ctx, "✅  Worker gracefully stopped")
}
