package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sellerdesk/listing-pipeline/internal/bootstrap"
	"github.com/sellerdesk/listing-pipeline/internal/config"
	"github.com/sellerdesk/listing-pipeline/internal/core/domain"
	"github.com/sellerdesk/listing-pipeline/internal/observability/logging"
)

const serviceName = "listing-worker"

// perMessageTimeout bounds a single enhancement run so a wedged
// downstream cannot stall the subscription.
const perMessageTimeout = 5 * time.Minute

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(cfg, serviceName)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           app.Pipeline.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("worker metrics listening", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
		}
	}()

	handler := func(msgCtx context.Context, req domain.EnhanceRequest) error {
		runCtx, cancel := context.WithTimeout(msgCtx, perMessageTimeout)
		defer cancel()

		result, err := app.Orchestrator.EnhanceByID(runCtx, req.ProductID, req.Marketplace)
		if err != nil {
			slog.Error("enhance request failed",
				"product_id", req.ProductID,
				"marketplace", req.Marketplace,
				"error", err,
			)
			return err
		}
		slog.Info("enhance request processed",
			"product_id", req.ProductID,
			"marketplace", result.Marketplace,
			"overall_score", result.OverallScore,
		)
		return nil
	}

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	if err := app.Queue.SubscribeEnhanceRequested(ctx, handler); err != nil {
		slog.Error("subscription failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics shutdown failed", "error", err)
	}
}
