package ports

import (
	"context"

	"github.com/negocehub/marketplace-api/internal/core/domain"
)

// UpdateProfileInput carries the optional profile changes for the acting user.
type UpdateProfileInput struct {
	Name  *string
	Email *string
}

// UserService defines profile use cases for the authenticated user.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error)
}
