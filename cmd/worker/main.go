package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/docnamer/internal/bootstrap"
	"github.com/kirillkom/docnamer/internal/config"
	"github.com/kirillkom/docnamer/internal/observability/logging"
	"github.com/kirillkom/docnamer/internal/observability/metrics"
)

const serviceName = "docnamer-worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		logger.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker metrics server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeFileUploaded(ctx, func(handlerCtx context.Context, fileID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		if rec, err := app.Files.GetByID(processCtx, fileID); err == nil {
			workerMetrics.ObserveQueueLag(serviceName, time.Since(rec.CreatedAt))
		}

		workerMetrics.StartFile()
		start := time.Now()
		processErr := app.ProcessUC.ProcessByID(processCtx, fileID)
		workerMetrics.FinishFile(serviceName, time.Since(start), processErr)
		if processErr != nil {
			logger.Error("file processing failed", "file_id", fileID, "error", processErr)
		}
		return processErr
	})
	if err != nil {
		logger.Error("worker subscribe failed", "error", err)
		os.Exit(1)
	}
}
