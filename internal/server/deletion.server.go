package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"user-deletion-service/internal/blob"
	"user-deletion-service/internal/config"
	"user-deletion-service/internal/handler"
	"user-deletion-service/internal/identity"
	"user-deletion-service/internal/manifest"
	"user-deletion-service/internal/router"
	"user-deletion-service/internal/store"
	"user-deletion-service/internal/usecase"
	"user-deletion-service/internal/worker"
	kafkaproducer "user-deletion-service/pkg/kafka"
)

// Run wires the deletion engine and blocks until shutdown.
func Run(cfg config.AppConfig, logger *zap.Logger) error {
	ctx := context.Background()

	db, err := config.ConnectDB(ctx, cfg.DBConnString)
	if err != nil {
		return err
	}
	defer db.Close()

	docs := store.NewPGStore(db)
	if err := docs.Migrate(ctx); err != nil {
		return err
	}

	blobs, err := blob.NewDiskStore(cfg.BlobDir)
	if err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})
	defer rdb.Close()
	registry := identity.NewRedisRegistry(rdb)

	m := manifest.Default()
	if err := m.Validate(); err != nil {
		return err
	}

	var producer usecase.DeletionEventProducer
	kp, err := kafkaproducer.NewDeletionEventProducer(cfg.KafkaBrokers)
	if err != nil {
		// Deletion events are best-effort; the cascade runs without a broker.
		logger.Warn("kafka producer unavailable, deletion events disabled", zap.Error(err))
	} else {
		producer = kp
		defer kp.Close()
	}

	cascadeUC := usecase.NewCascadeUsecase(docs, blobs, registry, m, cfg.StaleAfter, producer, logger)

	reaper := worker.NewReaper(docs, cascadeUC, cfg.ReaperInterval, cfg.ReaperGrace, logger)
	reaper.Start()
	defer reaper.Stop()

	h := handler.NewDeletionHandler(cascadeUC, logger)
	r := chi.NewRouter()
	router.SetupRoutes(r, h)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown error", zap.Error(err))
		}
	}()

	logger.Info("deletion service listening", zap.String("addr", cfg.HTTPAddr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
