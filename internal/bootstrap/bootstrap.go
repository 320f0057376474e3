// Package bootstrap wires configuration into a running application graph.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/sellerdesk/listing-pipeline/internal/config"
	"github.com/sellerdesk/listing-pipeline/internal/core/ports"
	"github.com/sellerdesk/listing-pipeline/internal/core/usecase"
	"github.com/sellerdesk/listing-pipeline/internal/guidelines"
	"github.com/sellerdesk/listing-pipeline/internal/infrastructure/export/excel"
	"github.com/sellerdesk/listing-pipeline/internal/infrastructure/llm/openaicompat"
	natsqueue "github.com/sellerdesk/listing-pipeline/internal/infrastructure/queue/nats"
	"github.com/sellerdesk/listing-pipeline/internal/infrastructure/repository/postgres"
	"github.com/sellerdesk/listing-pipeline/internal/infrastructure/resilience"
	"github.com/sellerdesk/listing-pipeline/internal/observability/metrics"
)

// App holds the wired application graph shared by the api and worker
// binaries.
type App struct {
	Config config.Config

	Registry     *guidelines.Registry
	Orchestrator *usecase.Orchestrator

	Products ports.ProductRepository
	Exports  ports.ExportRepository
	Queue    *natsqueue.Queue
	Reports  ports.ReportWriter

	Pipeline *metrics.PipelineMetrics

	db *sql.DB
}

func New(cfg config.Config, service string) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	products := postgres.NewProductRepository(db)
	if err := products.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	exports := postgres.NewExportRepository(db)

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	registry := guidelines.NewRegistry()
	if cfg.GuidelinesPath != "" {
		if err := registry.LoadFile(cfg.GuidelinesPath); err != nil {
			queue.Close()
			db.Close()
			return nil, fmt.Errorf("load guidelines: %w", err)
		}
		slog.Info("guideline overrides loaded", "path", cfg.GuidelinesPath)
	}

	var generator ports.TextGenerator
	if cfg.LLMEnabled {
		generator = openaicompat.New(cfg.LLMBaseURL, cfg.LLMAPIKey, openaicompat.Options{
			RequestsPerSecond:  cfg.LLMRequestsPerSecond,
			ResilienceExecutor: executor,
		})
	} else {
		slog.Info("text generation disabled, running rule-based fallbacks only")
	}

	stepOpts := usecase.StepOptions{
		Models:         cfg.LLMModels,
		AttemptTimeout: time.Duration(cfg.LLMAttemptTimeoutSec) * time.Second,
		RetryDelay:     time.Duration(cfg.LLMRetryDelayMS) * time.Millisecond,
	}

	validator := usecase.NewFieldValidator(registry, usecase.DefaultValidationConfig())
	checker := usecase.NewComplianceChecker(registry, generator, stepOpts, usecase.DefaultComplianceConfig())
	enhancer := usecase.NewContentEnhancer(registry, generator, stepOpts)
	keywords := usecase.NewKeywordGenerator(generator, stepOpts)
	aggregator := usecase.NewScoreAggregator(usecase.DefaultScoreWeights())

	pipeline := metrics.NewPipelineMetrics(service)

	orchestrator := usecase.NewOrchestrator(registry, validator, checker, enhancer, keywords, aggregator, usecase.OrchestratorConfig{
		Repository:         products,
		Observer:           pipeline,
		PoolSize:           cfg.BatchPoolSize,
		DefaultMarketplace: cfg.DefaultMarketplace,
	})

	reports, err := excel.NewWriter(cfg.ExportDir)
	if err != nil {
		queue.Close()
		db.Close()
		return nil, fmt.Errorf("prepare export dir: %w", err)
	}

	return &App{
		Config:       cfg,
		Registry:     registry,
		Orchestrator: orchestrator,
		Products:     products,
		Exports:      exports,
		Queue:        queue,
		Reports:      reports,
		Pipeline:     pipeline,
		db:           db,
	}, nil
}

func (a *App) Close() {
	if a.Queue != nil {
		a.Queue.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			slog.Warn("closing postgres", "error", err)
		}
	}
}
