package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/course-admin-store/internal/blob"
	"github.com/noah-isme/course-admin-store/internal/codec"
	"github.com/noah-isme/course-admin-store/internal/handler"
	"github.com/noah-isme/course-admin-store/internal/middleware"
	"github.com/noah-isme/course-admin-store/internal/models"
	"github.com/noah-isme/course-admin-store/internal/persistence"
	"github.com/noah-isme/course-admin-store/internal/service"
	"github.com/noah-isme/course-admin-store/internal/store"
	"github.com/noah-isme/course-admin-store/pkg/cache"
	"github.com/noah-isme/course-admin-store/pkg/config"
	"github.com/noah-isme/course-admin-store/pkg/database"
	"github.com/noah-isme/course-admin-store/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-admin-store/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-admin-store/pkg/middleware/requestid"
)

type snapshotWriter interface {
	store.Persister
	io.Closer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	backend, key, err := openBackend(ctx, cfg)
	if err != nil {
		logr.Sugar().Fatalw("failed to open snapshot backend", "backend", cfg.Store.Backend, "error", err)
	}
	defer backend.Close() //nolint:errcheck

	snapshotCodec, err := codec.ForName(cfg.Store.Codec)
	if err != nil {
		logr.Sugar().Fatalw("invalid snapshot codec", "codec", cfg.Store.Codec, "error", err)
	}

	adapter := persistence.NewAdapter(backend, key, cfg.Store.Version,
		persistence.WithCodec(snapshotCodec),
		persistence.WithLogger(logr.Named("persistence")),
		persistence.WithRecorder(metrics),
	)

	var writer snapshotWriter
	switch cfg.Store.WriteMode {
	case config.WriteModeQueue:
		writer = persistence.NewQueueWriter(ctx, adapter, cfg.Store.Retries, logr.Named("writer"))
	default:
		writer = persistence.NewSyncWriter(adapter)
	}

	st := store.New(
		store.WithPersister(writer),
		store.WithLogger(logr.Named("store")),
		store.WithRecorder(metrics),
	)

	snap, err := adapter.Load(ctx)
	if err != nil {
		logr.Sugar().Fatalw("failed to load snapshot", "error", err)
	}
	if snap != nil {
		st.Restore(snap)
	} else {
		logr.Info("starting with an empty store")
	}

	sessions := service.NewSessionService(st, metrics, logr.Named("sessions"), service.SessionServiceConfig{
		Duration: cfg.Sessions.Duration,
	})
	if _, err := sessions.Sweep(ctx, st.Now()); err != nil {
		logr.Sugar().Warnw("startup session sweep failed", "error", err)
	}
	go sessions.Run(ctx, cfg.Sessions.SweepInterval)

	metrics.TrackInProgressSessions(func() int {
		return len(st.ListSessionsWhere(context.Background(), func(w models.WeeklySession) bool {
			return w.Status == models.SessionInProgress
		}))
	})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ops := handler.NewOpsHandler(metrics, st)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics"))

	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)
	r.GET("/metrics/summary", ops.Summary)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown failed", zap.Error(err))
	}
	if err := writer.Close(); err != nil {
		logr.Error("failed to flush snapshot", zap.Error(err))
	}
}

// openBackend returns the blob store selected by cfg and the key the
// snapshot lives under.
func openBackend(ctx context.Context, cfg *config.Config) (blob.Store, string, error) {
	switch cfg.Store.Backend {
	case config.BackendFile, "":
		dir, name := filepath.Split(cfg.Store.FilePath)
		if dir == "" {
			dir = "."
		}
		fs, err := blob.NewFileStore(dir, cfg.Store.MaxBytes)
		if err != nil {
			return nil, "", err
		}
		return fs, name, nil
	case config.BackendRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, "", err
		}
		return blob.NewRedisStore(client, cfg.Store.MaxBytes), cfg.Store.Key, nil
	case config.BackendSQLite:
		db, err := database.NewSQLite(cfg.SQLite)
		if err != nil {
			return nil, "", err
		}
		s, err := blob.NewSQLStore(ctx, db, cfg.Store.MaxBytes)
		if err != nil {
			db.Close() //nolint:errcheck
			return nil, "", err
		}
		return s, cfg.Store.Key, nil
	case config.BackendPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, "", err
		}
		s, err := blob.NewSQLStore(ctx, db, cfg.Store.MaxBytes)
		if err != nil {
			db.Close() //nolint:errcheck
			return nil, "", err
		}
		return s, cfg.Store.Key, nil
	default:
		return nil, "", fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
