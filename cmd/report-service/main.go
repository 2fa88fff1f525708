package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erc-insight/platform/pkg/clinical"
	"github.com/erc-insight/platform/pkg/common/config"
	"github.com/erc-insight/platform/pkg/common/database"
	"github.com/erc-insight/platform/pkg/common/kafka"
	"github.com/erc-insight/platform/pkg/common/logger"
	"github.com/erc-insight/platform/pkg/common/models"
	"github.com/erc-insight/platform/pkg/extractor"
	"github.com/erc-insight/platform/pkg/reporting"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to PostgreSQL")
	}
	repo, err := reporting.NewRepository(db)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize repository")
	}

	redisClient := database.GetRedis()
	narrativeCache := reporting.NewNarrativeCache(redisClient, cfg.NarrativeCacheTTL)
	extractionStore := reporting.NewExtractionStore(redisClient, cfg.ExtractionRecordTTL)

	evaluator := clinical.NewEvaluator(cfg.NextVisitOffsetDays)
	clinicalSvc := clinical.NewService(evaluator, cfg.ProfileCacheTTL)

	producer := kafka.NewProducer(cfg.ExtractionKafkaTopic)
	defer producer.Close()

	service := reporting.NewService(
		clinicalSvc,
		reporting.NewNarrativeClient(cfg),
		narrativeCache,
		extractionStore,
		repo,
		producer,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mirror completed extractions into redis so reports can reference
	// them by id.
	consumer := kafka.NewConsumer(cfg.ExtractionKafkaTopic, "report-service")
	defer consumer.Close()
	go func() {
		handler := func(ctx context.Context, event models.Event) error {
			if event.Type != extractor.EventExtractionCompleted {
				return nil
			}
			return extractionStore.HandleEvent(ctx, event)
		}
		if err := consumer.Consume(ctx, handler); err != nil && err != context.Canceled {
			logger.Log.WithError(err).Error("Extraction event consumer stopped")
		}
	}()

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck).Methods("GET")
	reporting.NewHandler(service).RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, "8083"),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": "8083",
		}).Info("Report Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Report Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}
	database.ClosePostgres()
	database.CloseRedis()

	logger.Log.Info("Report Service stopped")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
