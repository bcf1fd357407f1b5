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
	"github.com/fhuszti/videonft-ms-go/internal/handler"
	sessionHandler "github.com/fhuszti/videonft-ms-go/internal/handler/session"
	"github.com/fhuszti/videonft-ms-go/internal/livepeer"
	"github.com/fhuszti/videonft-ms-go/internal/logger"
	cMiddleware "github.com/fhuszti/videonft-ms-go/internal/middleware"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/renderer"
	"github.com/fhuszti/videonft-ms-go/internal/repository/mariadb"
	"github.com/fhuszti/videonft-ms-go/internal/storage"
	"github.com/fhuszti/videonft-ms-go/internal/task"
	sessionSvc "github.com/fhuszti/videonft-ms-go/internal/usecase/session"
	msuuid "github.com/fhuszti/videonft-ms-go/internal/uuid"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init()

	database := initDb(ctx, cfg)
	strg := initStorage(ctx, cfg)
	repo := mariadb.NewSessionRepository(database.DB)
	sessCfg := sessionConfig(cfg)

	var ca port.Cache
	var dispatcher port.TaskDispatcher
	var closeDispatcher func()
	if cfg.RedisAddr != "" {
		ca = cache.NewCache(cfg.RedisAddr, cfg.RedisPassword)
		d := task.NewDispatcher(cfg.RedisAddr, cfg.RedisPassword, cfg.PipelineTimeout)
		dispatcher, closeDispatcher = d, func() { _ = d.Close() }
		logger.Info(ctx, "✅  Redis cache and task queue enabled")
	} else {
		ca = cache.NewNoop()
		runner := sessionSvc.NewSessionRunner(repo, ca, strg, initVideoService(cfg), initMinter(ctx, cfg), sessCfg)
		d := task.NewInlineDispatcher(runner, cfg.PipelineTimeout)
		dispatcher, closeDispatcher = d, d.Close
		logger.Warn(ctx, "⚠️  Redis not configured: caching is disabled and sessions run in-process")
	}

	r := initRouter(ctx)
	limit := httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute)

	createSvc := sessionSvc.NewSessionCreator(repo, msuuid.NewUUID, sessCfg)
	getSvc := sessionSvc.NewSessionGetter(repo, sessCfg)
	rendererSvc := renderer.NewHTTPRenderer(ca)
	selectSvc := sessionSvc.NewFileSelector(repo, ca, strg, msuuid.NewUUID, sessCfg)
	formSvc := sessionSvc.NewFormEditor(repo, ca, sessCfg)
	submitSvc := sessionSvc.NewSubmitter(repo, ca, dispatcher, sessCfg)
	toggleSvc := sessionSvc.NewErrorToggler(repo, ca, sessCfg)
	resetSvc := sessionSvc.NewSessionResetter(repo, ca, strg, sessCfg)
	deleteSvc := sessionSvc.NewSessionDeleter(repo, ca, strg)

	r.Group(func(r chi.Router) {
		r.Use(cMiddleware.WithDSTAuth(cfg.JWTPublicKey))
		r.Route("/sessions", func(r chi.Router) {
			r.With(limit).Post("/", sessionHandler.CreateSessionHandler(createSvc))

			r.Route("/{id}", func(r chi.Router) {
				r.Use(cMiddleware.WithSessionID())

				r.Get("/", sessionHandler.GetSessionHandler(rendererSvc, getSvc))

				r.Group(func(r chi.Router) {
					r.Use(limit)
					r.Delete("/", sessionHandler.DeleteSessionHandler(deleteSvc))
					r.Put("/file", sessionHandler.SelectFileHandler(selectSvc))
					r.Put("/form", sessionHandler.EditFormHandler(formSvc))
					r.Patch("/form", sessionHandler.EditFormHandler(formSvc))
					r.Post("/submit", sessionHandler.SubmitHandler(submitSvc))
					r.Post("/error/toggle", sessionHandler.ToggleErrorHandler(toggleSvc))
					r.Post("/reset", sessionHandler.ResetSessionHandler(resetSvc))
				})
			})
		})
	})

	listenRouter(ctx, r, cfg, database, closeDispatcher)
}

func sessionConfig(cfg *config.Settings) sessionSvc.Config {
	return sessionSvc.Config{
		ExplorerBaseURL: cfg.ExplorerBaseURL,
		MaxUploadBytes:  cfg.MaxUploadBytes,
		PollInterval:    cfg.PollInterval,
		ProgressEvery:   cfg.ProgressEvery,
		SessionTTL:      cfg.SessionTTL,
		ViewTTL:         cfg.SessionViewTTL,
	}
}

func initDb(ctx context.Context, cfg *config.Settings) *db.Database {
	logger.Info(ctx, "initialising database...")

	database, err := db.New(cfg.MariaDBDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}

	return database
}

// initRouter serves /metrics outside of the authenticated group.
func initRouter(ctx context.Context) *chi.Mux {
	logger.Info(ctx, "initialising router...")

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.NotFound(handler.NotFoundHandler())
	r.MethodNotAllowed(handler.MethodNotAllowedHandler())

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func initStorage(ctx context.Context, cfg *config.Settings) port.Storage {
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

func initVideoService(cfg *config.Settings) port.VideoService {
	return livepeer.NewClient(cfg.LivepeerAPIURL, cfg.LivepeerAPIKey, nil)
}

func initMinter(ctx context.Context, cfg *config.Settings) port.Minter {
	minter, err := chain.Dial(ctx, cfg.ChainRPCURL, cfg.ContractAddress, cfg.MinterPrivateKey, cfg.AllowedChainIDs)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize minter: %v", err)
		os.Exit(1)
	}
	logger.Infof(ctx, "✅  Minting from %s", minter.Wallet())

	return minter
}

func listenRouter(ctx context.Context, r *chi.Mux, cfg *config.Settings, database *db.Database, closeDispatcher func()) {
	srv := &http.Server{Addr: ":" + strconv.Itoa(cfg.ServerPort), Handler: r}

	// start serving
	go func() {
		logger.Infof(ctx, "🚀 API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "❌  Listen error: %v", err)
			os.Exit(1)
		}
	}()

	// block until we get SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "❌  Server shutdown failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "✅  Server gracefully stopped")

	// in-process runs are abandoned; the sweeper removes their sessions later
	closeDispatcher()

	if err := database.Close(); err != nil {
		logger.Errorf(ctx, "DB close error: %v", err)
		os.Exit(1)
	}
}
