package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/negocehub/marketplace-api/internal/core/domain"
	"github.com/negocehub/marketplace-api/internal/core/ports"
)

type stubCatalogService struct {
	listAllFn     func(ctx context.Context) ([]domain.Product, error)
	listByOwnerFn func(ctx context.Context, ownerID string) ([]domain.Product, error)
	getFn         func(ctx context.Context, id string) (*domain.Product, error)
	createFn      func(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error)
	updateFn      func(ctx context.Context, id, actorID string, fields ports.ProductUpdate) (*domain.Product, error)
	deleteFn      func(ctx context.Context, id, actorID string) error
}

func (s *stubCatalogService) ListAll(ctx context.Context) ([]domain.Product, error) {
	return s.listAllFn(ctx)
}

func (s *stubCatalogService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Product, error) {
	return s.listByOwnerFn(ctx, ownerID)
}

func (s *stubCatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.getFn(ctx, id)
}

func (s *stubCatalogService) Create(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	return s.createFn(ctx, input)
}

func (s *stubCatalogService) Update(ctx context.Context, id, actorID string, fields ports.ProductUpdate) (*domain.Product, error) {
	return s.updateFn(ctx, id, actorID, fields)
}

func (s *stubCatalogService) Delete(ctx context.Context, id, actorID string) error {
	return s.deleteFn(ctx, id, actorID)
}

func TestProductHandler_List(t *testing.T) {
	stub := &stubCatalogService{
		listAllFn: func(ctx context.Context) ([]domain.Product, error) {
			return []domain.Product{{ID: "p1", Name: "Lamp", OwnerID: "s1"}}, nil
		},
	}
	handler := NewProductHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/api/products", "")

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 1 || resp[0]["name"] != "Lamp" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestProductHandler_Create_OwnerFromContext(t *testing.T) {
	stub := &stubCatalogService{
		createFn: func(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
			if input.OwnerID != "seller_1" {
				t.Fatalf("owner %q, want seller_1 (must come from the token, not the payload)", input.OwnerID)
			}
			return &domain.Product{ID: "p1", Name: input.Name, OwnerID: input.OwnerID}, nil
		},
	}
	handler := NewProductHandler(stub)

	// owner_id in the payload must be ignored.
	c, rec := newTestContext(t, http.MethodPost, "/api/products",
		`{"name":"Lamp","price":10,"stock":3,"owner_id":"someone_else"}`)
	c.Set("user_id", "seller_1")

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestProductHandler_Create_Unauthenticated(t *testing.T) {
	stub := &stubCatalogService{
		createFn: func(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewProductHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/api/products", `{"name":"Lamp","price":10,"stock":3}`)

	err := handler.Create(c)
	if err == nil {
		t.Fatalf("expected error without auth claims")
	}
}

func TestProductHandler_Create_Validation(t *testing.T) {
	stub := &stubCatalogService{
		createFn: func(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewProductHandler(stub)

	cases := []string{
		`{"name":"","price":10,"stock":3}`,
		`{"name":"Lamp","price":-1,"stock":3}`,
		`{"name":"Lamp","price":10,"stock":-3}`,
	}
	for _, body := range cases {
		c, rec := newTestContext(t, http.MethodPost, "/api/products", body)
		c.Set("user_id", "seller_1")
		_ = handler.Create(c)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestProductHandler_Update_PropagatesOwnershipDenial(t *testing.T) {
	stub := &stubCatalogService{
		updateFn: func(ctx context.Context, id, actorID string, fields ports.ProductUpdate) (*domain.Product, error) {
			if actorID != "actor_a" {
				t.Fatalf("actor %q, want actor_a", actorID)
			}
			return nil, domain.ErrNotOwner
		},
	}
	handler := NewProductHandler(stub)

	c, _ := newTestContext(t, http.MethodPut, "/api/products/p1", `{"name":"Hacked"}`)
	c.SetParamNames("id")
	c.SetParamValues("p1")
	c.Set("user_id", "actor_a")

	err := handler.Update(c)
	if !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner to propagate to the error handler, got %v", err)
	}
}

func TestProductHandler_Delete_NoContent(t *testing.T) {
	stub := &stubCatalogService{
		deleteFn: func(ctx context.Context, id, actorID string) error {
			if id != "p1" || actorID != "seller_1" {
				t.Fatalf("unexpected args: %s %s", id, actorID)
			}
			return nil
		},
	}
	handler := NewProductHandler(stub)

	c, rec := newTestContext(t, http.MethodDelete, "/api/products/p1", "")
	c.SetParamNames("id")
	c.SetParamValues("p1")
	c.Set("user_id", "seller_1")

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestProductHandler_ListMine_ScopedToActor(t *testing.T) {
	stub := &stubCatalogService{
		listByOwnerFn: func(ctx context.Context, ownerID string) ([]domain.Product, error) {
			if ownerID != "seller_1" {
				t.Fatalf("owner %q, want seller_1", ownerID)
			}
			return []domain.Product{}, nil
		},
	}
	handler := NewProductHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/api/products/mine", "")
	c.Set("user_id", "seller_1")

	if err := handler.ListMine(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
