package ports

import (
	"context"

	"github.com/sellerdesk/listing-pipeline/internal/core/domain"
)

// GenerationRequest is one request/response text generation call.
type GenerationRequest struct {
	SystemPrompt string
	UserPrompt   string
	Model        string
	JSONMode     bool
}

// TextGenerator is the external large-language-model capability. A failed
// call or a non-parseable success are treated identically by callers: both
// route to the deterministic fallback.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// ProductRepository persists and reads product records.
type ProductRepository interface {
	Save(ctx context.Context, products []*domain.Product) ([]*domain.Product, error)
	Update(ctx context.Context, products []*domain.Product) ([]*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// ExportRepository records and lists export history.
type ExportRepository interface {
	RecordExport(ctx context.Context, record *domain.ExportRecord) error
	ListExports(ctx context.Context) ([]domain.ExportRecord, error)
}

// MessageQueue publishes/consumes enhancement requests for async batches.
type MessageQueue interface {
	PublishEnhanceRequested(ctx context.Context, req domain.EnhanceRequest) error
	SubscribeEnhanceRequested(ctx context.Context, handler func(context.Context, domain.EnhanceRequest) error) error
}

// ReportWriter renders a batch of enhancement results into a report file
// and returns its path.
type ReportWriter interface {
	WriteReport(ctx context.Context, results []*domain.EnhancementResult) (string, error)
}
