package ports

import (
	"context"

	"github.com/negocehub/marketplace-api/internal/core/domain"
)

// ProductUpdate carries the mutable product fields. Nil means "leave unchanged".
// OwnerID is deliberately absent: ownership is fixed at creation.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *float64
	Stock       *int
	ImageURL    *string
}

// ProductRepository defines persistence operations for catalog products.
// Update and Delete take the acting owner's id and scope the underlying query
// by owner_id in addition to _id, so a mutation can never touch a record the
// caller does not own even if a service-level check is bypassed.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Product, error)
	Update(ctx context.Context, id, ownerID string, fields ProductUpdate) (*domain.Product, error)
	Delete(ctx context.Context, id, ownerID string) error
}
