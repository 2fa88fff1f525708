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
	"github.com/erc-insight/platform/pkg/common/logger"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init()
	cfg := config.Load()

	evaluator := clinical.NewEvaluator(cfg.NextVisitOffsetDays)
	service := clinical.NewService(evaluator, cfg.ProfileCacheTTL)

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck).Methods("GET")
	clinical.NewHandler(service).RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, "8082"),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": "8082",
		}).Info("Scoring Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Scoring Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Scoring Service stopped")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
