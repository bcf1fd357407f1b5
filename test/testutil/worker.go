package testutil

import (
	"context"
	"database/sql"

	"github.com/fhuszti/videonft-ms-go/internal/cache"
	workerHandler "github.com/fhuszti/videonft-ms-go/internal/handler/worker"
	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/repository/mariadb"
	"github.com/fhuszti/videonft-ms-go/internal/task"
	sessionSvc "github.com/fhuszti/videonft-ms-go/internal/usecase/session"
	"github.com/hibiken/asynq"
)

// StartWorker starts an asynq worker running session tasks against the given
// database, staging bucket, video service and minter.
// It returns a function to gracefully shut down the worker.
func StartWorker(database *sql.DB, strg port.Storage, video port.VideoService, minter port.Minter, redisAddr string, cfg sessionSvc.Config) func() {
	repo := mariadb.NewSessionRepository(database)
	runSvc := sessionSvc.NewSessionRunner(repo, cache.NewNoop(), strg, video, minter, cfg)

	mux := asynq.NewServeMux()
	mux.HandleFunc(task.TypeRunSession, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseRunSessionPayload(t)
		if err != nil {
			return err
		}
		return workerHandler.RunSessionHandler(ctx, p, runSvc)
	})

	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{Concurrency: 2})
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Errorf(context.Background(), "worker stopped: %v", err)
		}
	}()

	return func() {
		srv.Shutdown()
	}
}
