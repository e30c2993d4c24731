package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/negocehub/marketplace-api/internal/core/domain"
	"github.com/negocehub/marketplace-api/internal/core/ports"
)

// UserService implements profile reads and updates for the acting user.
type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// UpdateProfile applies the provided fields. An email change is rejected with
// domain.ErrEmailTaken when another account already holds the new address.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input ports.UpdateProfileInput) (*domain.User, error) {
	if input.Name == nil && input.Email == nil {
		return nil, domain.ErrInvalidInput
	}

	current, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != current.Email {
		other, err := s.repo.FindByEmail(ctx, *input.Email)
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		if other != nil && other.ID != userID {
			return nil, domain.ErrEmailTaken
		}
	}

	updated, err := s.repo.Update(ctx, userID, ports.UserUpdate{Name: input.Name, Email: input.Email})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", userID).Msg("profile updated")
	return updated, nil
}
