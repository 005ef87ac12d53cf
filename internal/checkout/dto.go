package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/puntadaestudio/puntada-backend/pkg/db/models"
	"github.com/puntadaestudio/puntada-backend/pkg/enums"
)

// Guard carries the buyer details collected before submission. All
// string fields are trimmed during validation.
type Guard struct {
	Name          string
	Email         string
	Phone         string
	Address       string
	City          string
	Notes         string
	TermsAccepted bool
}

// SubmitInput is the full submission payload. SessionID scopes the
// in-flight guard; OwnerID locates the cart snapshot.
type SubmitInput struct {
	SessionID string
	OwnerID   string
	BuyerID   *uuid.UUID
	Guard     Guard
}

// Prefill is what an authenticated identity contributes to the guard.
type Prefill struct {
	Name  string
	Email string
	Phone string
}

// TicketItem is one immutable line on the ticket.
type TicketItem struct {
	Title     string `json:"title"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

// Ticket is the bank-transfer order ticket returned after a successful
// submission. Total is computed from the ticket's own items.
type Ticket struct {
	OrderID      uuid.UUID         `json:"order_id"`
	OrderNumber  int64             `json:"order_number"`
	Status       enums.OrderStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	BuyerName    string            `json:"buyer_name"`
	BuyerEmail   string            `json:"buyer_email"`
	BuyerPhone   string            `json:"buyer_phone"`
	ShipAddress  string            `json:"ship_address"`
	ShipCity     string            `json:"ship_city"`
	Items        []TicketItem      `json:"items"`
	Total        string            `json:"total"`
	WhatsAppLink string            `json:"whatsapp_link"`
}

func ticketFromOrder(order *models.Order, whatsAppLink string) *Ticket {
	items := make([]TicketItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, TicketItem{
			Title:     item.Title,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			LineTotal: item.LineTotal().StringFixed(2),
		})
	}
	return &Ticket{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		Status:       order.Status,
		CreatedAt:    order.CreatedAt,
		BuyerName:    order.BuyerName,
		BuyerEmail:   order.BuyerEmail,
		BuyerPhone:   order.BuyerPhone,
		ShipAddress:  order.ShipAddress,
		ShipCity:     order.ShipCity,
		Items:        items,
		Total:        order.Total().StringFixed(2),
		WhatsAppLink: whatsAppLink,
	}
}
