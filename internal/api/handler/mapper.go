package handler

import (
	"github.com/negocehub/marketplace-api/internal/core/domain"
	"github.com/negocehub/marketplace-api/internal/core/ports"
)

func toProfileResponse(u *domain.User) profileResponse {
	return profileResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		IsSeller: u.IsSeller,
	}
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
}

func toProductListResponse(products []domain.Product) []productResponse {
	out := make([]productResponse, len(products))
	for i := range products {
		out[i] = toProductResponse(&products[i])
	}
	return out
}

func toProductUpdate(req updateProductRequest) ports.ProductUpdate {
	return ports.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	}
}
