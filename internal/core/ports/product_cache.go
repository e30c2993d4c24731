package ports

import (
	"context"

	"github.com/negocehub/marketplace-api/internal/core/domain"
)

// ProductCache is a read-through cache for the public catalog listing.
// GetAll returns (nil, nil) on a cache miss. Implementations must treat cache
// failures as misses; the catalog must keep working when the cache is down.
type ProductCache interface {
	GetAll(ctx context.Context) ([]domain.Product, error)
	SetAll(ctx context.Context, products []domain.Product) error
	Invalidate(ctx context.Context) error
}
