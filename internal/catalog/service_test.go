package catalog

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/puntadaestudio/puntada-backend/pkg/db/models"
	"github.com/puntadaestudio/puntada-backend/pkg/enums"
	pkgerrors "github.com/puntadaestudio/puntada-backend/pkg/errors"
)

type stubRepo struct {
	products     []models.Product
	lastCategory *enums.ProductCategory
	lastLimit    int
	findErr      error
}

func (s *stubRepo) ListActive(_ context.Context, category *enums.ProductCategory, limit int) ([]models.Product, error) {
	s.lastCategory = category
	s.lastLimit = limit
	return s.products, nil
}

func (s *stubRepo) FindBySlug(_ context.Context, slug string) (*models.Product, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	for i := range s.products {
		if s.products[i].Slug == slug {
			return &s.products[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func TestListProductsPassesCategoryFilter(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{products: []models.Product{{Title: "Buzo oversize", Slug: "buzo-oversize"}}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	products, err := svc.ListProducts(context.Background(), "buzos", 25)
	if err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected one product, got %d", len(products))
	}
	if repo.lastCategory == nil || *repo.lastCategory != enums.ProductCategoryHoodies {
		t.Fatalf("expected buzos filter, got %v", repo.lastCategory)
	}
	if repo.lastLimit != 25 {
		t.Fatalf("expected limit 25, got %d", repo.lastLimit)
	}
}

func TestListProductsRejectsUnknownCategory(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRepo{})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	_, err = svc.ListProducts(context.Background(), "zapatos", 0)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestGetProductBySlugNotFound(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRepo{})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	_, err = svc.GetProductBySlug(context.Background(), "no-existe")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
