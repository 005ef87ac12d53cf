package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/puntadaestudio/puntada-backend/pkg/types"
)

// OrderItem captures the snapshot of one cart line at submission time.
type OrderItem struct {
	ID            uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID                   `gorm:"column:order_id;type:uuid;not null"`
	ProductID     uuid.UUID                   `gorm:"column:product_id;type:uuid;not null"`
	Title         string                      `gorm:"column:title;not null"`
	Size          string                      `gorm:"column:size;not null;default:''"`
	Color         string                      `gorm:"column:color;not null;default:''"`
	Fit           string                      `gorm:"column:fit;not null;default:''"`
	Quantity      int                         `gorm:"column:quantity;not null"`
	UnitPrice     decimal.Decimal             `gorm:"column:unit_price;type:numeric(12,2);not null"`
	ImageRef      string                      `gorm:"column:image_ref;not null;default:''"`
	Customization *types.CustomizationPayload `gorm:"column:customization;type:jsonb;serializer:json"`
	CreatedAt     time.Time                   `gorm:"column:created_at;autoCreateTime"`
}

// LineTotal is unit price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
