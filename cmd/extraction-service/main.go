package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erc-insight/platform/pkg/common/config"
	"github.com/erc-insight/platform/pkg/common/database"
	"github.com/erc-insight/platform/pkg/common/kafka"
	"github.com/erc-insight/platform/pkg/common/logger"
	"github.com/erc-insight/platform/pkg/extractor"
	"github.com/erc-insight/platform/pkg/labpatterns"
	"github.com/gorilla/mux"
)

const cleanupInterval = 6 * time.Hour

func main() {
	logger.Init()
	cfg := config.Load()

	library, err := labpatterns.LoadLibrary(cfg.PatternLibraryPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load pattern library")
	}

	engine, err := extractor.New(library, extractor.Options{
		RACUnitCorrection: cfg.RACUnitCorrectionEnabled,
	})
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to compile pattern library")
	}

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to PostgreSQL")
	}
	repo, err := extractor.NewRepository(db)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize repository")
	}

	producer := kafka.NewProducer(cfg.ExtractionKafkaTopic)
	defer producer.Close()

	service := extractor.NewService(engine, repo, producer, cfg.ExtractionRecordTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.CleanupLoop(ctx, cleanupInterval)

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck).Methods("GET")
	extractor.NewHandler(service, cfg.MaxRequestBody).RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, "8081"),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": "8081",
		}).Info("Extraction Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Extraction Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}
	database.ClosePostgres()

	logger.Log.Info("Extraction Service stopped")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
