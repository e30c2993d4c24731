package ports

import (
	"context"

	"github.com/negocehub/marketplace-api/internal/core/domain"
)

// UserUpdate carries the mutable profile fields. Nil means "leave unchanged".
type UserUpdate struct {
	Name  *string
	Email *string
}

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create inserts a new user. Returns domain.ErrEmailTaken when the email
	// collides with the unique index.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Update applies the non-nil fields and returns the updated user.
	Update(ctx context.Context, id string, fields UserUpdate) (*domain.User, error)
}
