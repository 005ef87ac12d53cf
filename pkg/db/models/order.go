package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/puntadaestudio/puntada-backend/pkg/enums"
)

// Order is the immutable ticket produced by a checkout submission. The
// buyer and item fields are snapshots; later catalog or profile edits do
// not reach back into persisted orders.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber int64             `gorm:"column:order_number;->"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pendiente'"`
	BuyerID     *uuid.UUID        `gorm:"column:buyer_id;type:uuid"`
	BuyerName   string            `gorm:"column:buyer_name;not null"`
	BuyerEmail  string            `gorm:"column:buyer_email;not null"`
	BuyerPhone  string            `gorm:"column:buyer_phone;not null"`
	ShipAddress string            `gorm:"column:ship_address;not null"`
	ShipCity    string            `gorm:"column:ship_city;not null"`
	Notes       string            `gorm:"column:notes;not null;default:''"`
	Items       []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// Total sums the embedded item snapshots. The ticket never trusts a
// stored aggregate.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}
