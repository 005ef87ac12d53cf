package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/puntadaestudio/puntada-backend/pkg/db/models"
	"github.com/puntadaestudio/puntada-backend/pkg/enums"
)

// Repository defines the read surface for the product catalog.
type Repository interface {
	ListActive(ctx context.Context, category *enums.ProductCategory, limit int) ([]models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListActive(ctx context.Context, category *enums.ProductCategory, limit int) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Where("active = ?", true)
	if category != nil {
		query = query.Where("category = ?", *category)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var products []models.Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("slug = ? AND active = ?", slug, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}
