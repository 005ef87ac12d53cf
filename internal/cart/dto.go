package cart

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/puntadaestudio/puntada-backend/pkg/types"
)

// lineNamespace seeds the deterministic (uuid5) line identifiers so the
// same variant selection always lands on the same cart line.
var lineNamespace = uuid.MustParse("9d2f6f0a-80cb-47a5-928e-d3973cf1a3b6")

// Line is one cart entry: a product variant plus an optional
// customization payload, treated as opaque bytes at this layer.
type Line struct {
	ID            uuid.UUID                   `json:"id"`
	ProductID     uuid.UUID                   `json:"product_id"`
	Title         string                      `json:"title"`
	UnitPrice     decimal.Decimal             `json:"unit_price"`
	Quantity      int                         `json:"quantity"`
	Size          string                      `json:"size"`
	Color         string                      `json:"color"`
	Fit           string                      `json:"fit"`
	ImageRef      string                      `json:"image_ref"`
	Customization *types.CustomizationPayload `json:"customization,omitempty"`
}

// LineTotal is unit price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the full snapshot persisted per owner. Count and Total are
// always recomputed from the lines, never stored.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Count sums the quantities across all lines.
func (c Cart) Count() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// Total sums the line totals with decimal arithmetic.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// AddItemInput captures the payload required to add a variant selection.
type AddItemInput struct {
	ProductID     uuid.UUID
	Title         string
	UnitPrice     decimal.Decimal
	Quantity      float64
	Size          string
	Color         string
	Fit           string
	ImageRef      string
	Customization *types.CustomizationPayload
}

// LineID derives the deterministic identifier for the variant selection.
// Two selections differing only in quantity collapse onto the same line.
func (in AddItemInput) LineID() uuid.UUID {
	fingerprint := ""
	if in.Customization != nil {
		fingerprint = in.Customization.Fingerprint()
	}
	key := strings.Join([]string{
		in.ProductID.String(),
		in.Size,
		in.Color,
		in.Fit,
		fingerprint,
	}, "|")
	return uuid.NewSHA1(lineNamespace, []byte(key))
}
