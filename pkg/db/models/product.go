package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/puntadaestudio/puntada-backend/pkg/enums"
)

// Product is a sellable garment or accessory in the catalog.
type Product struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title        string                `gorm:"column:title;not null"`
	Slug         string                `gorm:"column:slug;not null;uniqueIndex"`
	Description  string                `gorm:"column:description;not null;default:''"`
	Category     enums.ProductCategory `gorm:"column:category;type:text;not null"`
	Price        decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	Sizes        []string              `gorm:"column:sizes;type:jsonb;serializer:json"`
	Colors       []string              `gorm:"column:colors;type:jsonb;serializer:json"`
	Images       []string              `gorm:"column:images;type:jsonb;serializer:json"`
	Customizable bool                  `gorm:"column:customizable;not null;default:false"`
	Active       bool                  `gorm:"column:active;not null;default:true"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
