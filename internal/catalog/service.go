package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/puntadaestudio/puntada-backend/pkg/db/models"
	"github.com/puntadaestudio/puntada-backend/pkg/enums"
	pkgerrors "github.com/puntadaestudio/puntada-backend/pkg/errors"
)

// Service exposes read-only product browsing.
type Service interface {
	ListProducts(ctx context.Context, category string, limit int) ([]models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
}

type service struct {
	repo Repository
}

// NewService builds a catalog service over the repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// ListProducts returns active products, optionally filtered by category
// and capped at limit rows.
func (s *service) ListProducts(ctx context.Context, category string, limit int) ([]models.Product, error) {
	var filter *enums.ProductCategory
	if trimmed := strings.TrimSpace(category); trimmed != "" {
		parsed, err := enums.ParseProductCategory(trimmed)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", trimmed))
		}
		filter = &parsed
	}

	products, err := s.repo.ListActive(ctx, filter, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing products")
	}
	return products, nil
}

// GetProductBySlug returns the active product with the given slug.
func (s *service) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}

	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	return product, nil
}
