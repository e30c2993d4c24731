package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/negocehub/marketplace-api/internal/api/metrics"
	"github.com/negocehub/marketplace-api/internal/core/domain"
	"github.com/negocehub/marketplace-api/internal/core/ports"
)

// CatalogService implements product CRUD. Every mutation is authorized with
// domain.AuthorizeOwner before the owner-scoped repository call runs.
type CatalogService struct {
	repo   ports.ProductRepository
	cache  ports.ProductCache
	logger zerolog.Logger
}

// NewCatalogService builds a CatalogService. cache may be nil; caching is then
// skipped entirely.
func NewCatalogService(repo ports.ProductRepository, cache ports.ProductCache, logger zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, cache: cache, logger: logger}
}

// ListAll returns the public catalog, served from cache when warm.
func (s *CatalogService) ListAll(ctx context.Context) ([]domain.Product, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetAll(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.logger.Warn().Err(err).Msg("catalog cache read failed")
		}
	}

	products, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetAll(ctx, products); err != nil {
			s.logger.Warn().Err(err).Msg("catalog cache write failed")
		}
	}
	return products, nil
}

func (s *CatalogService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Product, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	if input.Name == "" || input.OwnerID == "" || input.Price < 0 || input.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}

	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
		OwnerID:     input.OwnerID,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, err
	}

	metrics.ProductsCreatedTotal.Inc()
	s.logger.Info().Str("product_id", created.ID).Str("owner_id", created.OwnerID).Msg("product created")

	s.invalidate(ctx)
	return created, nil
}

func (s *CatalogService) Update(ctx context.Context, id, actorID string, fields ports.ProductUpdate) (*domain.Product, error) {
	if fields.Price != nil && *fields.Price < 0 {
		return nil, domain.ErrInvalidInput
	}
	if fields.Stock != nil && *fields.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}

	if err := s.authorize(ctx, id, actorID); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, actorID, fields)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, id, actorID string) error {
	if err := s.authorize(ctx, id, actorID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, actorID); err != nil {
		return err
	}

	s.logger.Info().Str("product_id", id).Str("owner_id", actorID).Msg("product deleted")
	s.invalidate(ctx)
	return nil
}

// authorize loads the product and applies the ownership rule. A denial is
// counted but surfaces to the transport layer as domain.ErrNotOwner, which the
// API renders as not-found so callers cannot tell "not yours" from "absent".
func (s *CatalogService) authorize(ctx context.Context, id, actorID string) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := domain.AuthorizeOwner(actorID, product.OwnerID); err != nil {
		metrics.OwnershipDenialsTotal.Inc()
		s.logger.Warn().
			Str("product_id", id).
			Str("actor_id", actorID).
			Str("owner_id", product.OwnerID).
			Msg("ownership denied")
		return err
	}
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}
