package ports

import (
	"context"

	"github.com/sellerdesk/listing-pipeline/internal/core/domain"
)

// ListingEnhancer runs the full enhancement pipeline.
type ListingEnhancer interface {
	Enhance(ctx context.Context, product *domain.Product, marketplace string) (*domain.EnhancementResult, error)
	EnhanceByID(ctx context.Context, productID, marketplace string) (*domain.EnhancementResult, error)
	EnhanceBatch(ctx context.Context, products []*domain.Product, marketplace string) ([]*domain.EnhancementResult, error)
}
