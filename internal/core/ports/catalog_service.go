package ports

import (
	"context"

	"github.com/negocehub/marketplace-api/internal/core/domain"
)

// CreateProductInput carries the data for a new listing. OwnerID always comes
// from the authenticated actor, never from the request payload.
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	ImageURL    string
	OwnerID     string
}

// CatalogService defines catalog use cases. Mutations require the acting
// user's id and are refused unless the actor owns the product.
type CatalogService interface {
	ListAll(ctx context.Context) ([]domain.Product, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id, actorID string, fields ProductUpdate) (*domain.Product, error)
	Delete(ctx context.Context, id, actorID string) error
}
