package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sellerdesk/listing-pipeline/internal/core/domain"
	"github.com/sellerdesk/listing-pipeline/internal/core/ports"
	"github.com/sellerdesk/listing-pipeline/internal/guidelines"
)

// StageObserver receives pipeline observations. Implemented by the
// prometheus metrics adapter; nil disables observation.
type StageObserver interface {
	ObserveStage(stage string, usedAI bool)
	ObserveProduct(marketplace string, overallScore int, failed bool, duration time.Duration)
}

// OrchestratorConfig carries the optional collaborators.
type OrchestratorConfig struct {
	Repository ports.ProductRepository
	Observer   StageObserver
	PoolSize   int

	// DefaultMarketplace is used when a request names no marketplace.
	DefaultMarketplace string
}

// Orchestrator drives one product through the full pipeline:
// validate, check compliance, enhance content, generate keywords,
// aggregate. Each AI-backed step absorbs its own failure through a
// deterministic fallback, so a run always reaches a usable result.
type Orchestrator struct {
	registry   *guidelines.Registry
	validator  *FieldValidator
	checker    *ComplianceChecker
	enhancer   *ContentEnhancer
	keywords   *KeywordGenerator
	aggregator *ScoreAggregator

	repo               ports.ProductRepository
	observer           StageObserver
	poolSize           int
	defaultMarketplace string
}

func NewOrchestrator(
	registry *guidelines.Registry,
	validator *FieldValidator,
	checker *ComplianceChecker,
	enhancer *ContentEnhancer,
	keywords *KeywordGenerator,
	aggregator *ScoreAggregator,
	cfg OrchestratorConfig,
) *Orchestrator {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}
	defaultMarketplace := strings.ToLower(strings.TrimSpace(cfg.DefaultMarketplace))
	if defaultMarketplace == "" {
		defaultMarketplace = guidelines.DefaultMarketplace
	}
	return &Orchestrator{
		registry:           registry,
		validator:          validator,
		checker:            checker,
		enhancer:           enhancer,
		keywords:           keywords,
		aggregator:         aggregator,
		repo:               cfg.Repository,
		observer:           cfg.Observer,
		poolSize:           poolSize,
		defaultMarketplace: defaultMarketplace,
	}
}

func (o *Orchestrator) Enhance(ctx context.Context, product *domain.Product, marketplace string) (*domain.EnhancementResult, error) {
	if product == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "enhance product", errors.New("nil product"))
	}
	start := time.Now()
	marketplace = strings.ToLower(strings.TrimSpace(marketplace))
	if marketplace == "" {
		marketplace = o.defaultMarketplace
	}

	original := product.Clone()
	work := product.Clone()
	narrative := make([]string, 0, 8)

	if !o.registry.Known(marketplace) {
		narrative = append(narrative,
			fmt.Sprintf("marketplace %q is not configured; using %s guidelines", marketplace, guidelines.DefaultMarketplace))
	}

	validation := o.validator.Validate(work, marketplace)
	narrative = append(narrative, fmt.Sprintf(
		"validation: score %d, %d issue(s), %d missing field(s)",
		validation.Score, len(validation.Issues), len(validation.MissingFields)))

	compliance, complianceOutcome := o.checker.Check(ctx, work, marketplace)
	narrative = append(narrative, describeOutcome("compliance", complianceOutcome,
		fmt.Sprintf("score %d, %d issue(s)", compliance.Score, len(compliance.Issues))))
	o.observeStage("compliance", complianceOutcome)

	content, contentOutcome := o.enhancer.Enhance(ctx, work, marketplace)
	work.Title = content.Title
	work.Description = content.Description
	work.BulletPoints = content.BulletPoints
	narrative = append(narrative, describeOutcome("enhancement", contentOutcome,
		fmt.Sprintf("%d field(s) rewritten", countChanged(content.Changes))))
	o.observeStage("enhance", contentOutcome)

	keywordSet, keywordOutcome := o.keywords.Generate(ctx, work, marketplace)
	work.Keywords = append(append([]string(nil), keywordSet.Primary...), keywordSet.Secondary...)
	narrative = append(narrative, describeOutcome("keywords", keywordOutcome,
		fmt.Sprintf("%d/%d/%d keywords across tiers", len(keywordSet.Primary), len(keywordSet.Secondary), len(keywordSet.Tertiary))))
	o.observeStage("keywords", keywordOutcome)

	// Sub-scores rate the listing as the seller submitted it. Synthesized
	// fallback content goes into the enhanced copy only and never lifts
	// the readiness score.
	contentScore := o.enhancer.ContentScore(original, marketplace)
	seoScore := o.keywords.SEOScore(keywordSet, original)
	overall := o.aggregator.Aggregate(validation.Score, compliance.Score, contentScore, seoScore)
	narrative = append(narrative, fmt.Sprintf(
		"scores: validation %d, compliance %d, content %d, seo %d, overall %d",
		validation.Score, compliance.Score, contentScore, seoScore, overall))

	critical, recommendations := splitIssues(validation.Issues, compliance.Issues)
	work.UpdatedAt = time.Now().UTC()

	result := &domain.EnhancementResult{
		ProductID:       product.ID,
		Marketplace:     marketplace,
		Original:        original,
		Enhanced:        work,
		Changes:         content.Changes,
		CriticalIssues:  critical,
		Recommendations: recommendations,
		MissingFields:   validation.MissingFields,
		Keywords:        keywordSet,
		IsValid:         validation.IsValid,
		ValidationScore: validation.Score,
		ComplianceScore: compliance.Score,
		ContentScore:    contentScore,
		SEOScore:        seoScore,
		OverallScore:    overall,
		Narrative:       narrative,
		ProcessingTime:  time.Since(start),
		CreatedAt:       time.Now().UTC(),
	}

	// The computed result survives a storage failure; persistence is a
	// tolerated collaborator, never a gate.
	if o.repo != nil && product.ID != "" {
		if _, err := o.repo.Update(ctx, []*domain.Product{work}); err != nil {
			slog.Warn("enhanced_product_persist_failed", "product_id", product.ID, "error", err)
			result.Narrative = append(result.Narrative, "warning: enhanced product could not be persisted")
		}
	}

	if o.observer != nil {
		o.observer.ObserveProduct(marketplace, overall, false, result.ProcessingTime)
	}
	return result, nil
}

// EnhanceByID loads a stored product and runs the pipeline on it. Used by
// the queue worker.
func (o *Orchestrator) EnhanceByID(ctx context.Context, productID, marketplace string) (*domain.EnhancementResult, error) {
	if o.repo == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "enhance by id", errors.New("no product repository configured"))
	}
	product, err := o.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", productID, err)
	}
	return o.Enhance(ctx, product, marketplace)
}

// EnhanceBatch runs the full pipeline per product on a bounded worker
// pool. One product's unexpected failure yields a zero-scored,
// error-annotated placeholder for that product only; siblings are never
// affected. Cancellation stops launching new products but lets in-flight
// ones finish.
func (o *Orchestrator) EnhanceBatch(ctx context.Context, products []*domain.Product, marketplace string) ([]*domain.EnhancementResult, error) {
	if products == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "enhance batch", errors.New("nil product list"))
	}

	results := make([]*domain.EnhancementResult, len(products))
	sem := make(chan struct{}, o.poolSize)
	var wg sync.WaitGroup

	for i, product := range products {
		if err := ctx.Err(); err != nil {
			results[i] = failedResult(product, marketplace, fmt.Sprintf("batch cancelled before processing: %v", err))
			continue
		}
		// Cancellation must also interrupt a launch that is waiting for a
		// pool slot.
		select {
		case <-ctx.Done():
			results[i] = failedResult(product, marketplace, fmt.Sprintf("batch cancelled before processing: %v", ctx.Err()))
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(idx int, p *domain.Product) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = o.enhanceIsolated(ctx, p, marketplace)
		}(i, product)
	}
	wg.Wait()
	return results, nil
}

// enhanceIsolated converts any panic or error from a single product into
// a placeholder result so batch siblings are unaffected.
func (o *Orchestrator) enhanceIsolated(ctx context.Context, product *domain.Product, marketplace string) (result *domain.EnhancementResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("product_pipeline_panic", "marketplace", marketplace, "panic", r)
			result = failedResult(product, marketplace, fmt.Sprintf("unexpected failure: %v", r))
			if o.observer != nil {
				o.observer.ObserveProduct(marketplace, 0, true, 0)
			}
		}
	}()

	result, err := o.Enhance(ctx, product, marketplace)
	if err != nil {
		result = failedResult(product, marketplace, err.Error())
		if o.observer != nil {
			o.observer.ObserveProduct(marketplace, 0, true, 0)
		}
	}
	return result
}

func failedResult(product *domain.Product, marketplace, message string) *domain.EnhancementResult {
	var id string
	var original *domain.Product
	if product != nil {
		id = product.ID
		original = product.Clone()
	}
	return &domain.EnhancementResult{
		ProductID:   id,
		Marketplace: marketplace,
		Original:    original,
		Enhanced:    original,
		Narrative:   []string{"pipeline aborted: " + message},
		Error:       message,
		CreatedAt:   time.Now().UTC(),
	}
}

func (o *Orchestrator) observeStage(stage string, outcome stepOutcome) {
	if o.observer != nil {
		o.observer.ObserveStage(stage, outcome.UsedAI)
	}
}

func describeOutcome(stage string, outcome stepOutcome, summary string) string {
	if outcome.UsedAI {
		return fmt.Sprintf("%s: model %s, %s", stage, outcome.Model, summary)
	}
	reason := outcome.Reason
	if reason == "" {
		reason = "deterministic rules"
	}
	return fmt.Sprintf("%s: rule-based fallback (%s), %s", stage, reason, summary)
}

func countChanged(changes []domain.FieldChange) int {
	n := 0
	for _, change := range changes {
		if change.Before != change.After {
			n++
		}
	}
	return n
}

func splitIssues(groups ...[]domain.Issue) (critical, recommendations []domain.Issue) {
	for _, issues := range groups {
		for _, issue := range issues {
			if issue.Severity == domain.SeverityCritical {
				critical = append(critical, issue)
			} else {
				recommendations = append(recommendations, issue)
			}
		}
	}
	return critical, recommendations
}
