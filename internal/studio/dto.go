package studio

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/puntadaestudio/puntada-backend/pkg/enums"
	"github.com/puntadaestudio/puntada-backend/pkg/types"
)

// Element is one placed customization on the garment.
type Element struct {
	ID        uuid.UUID         `json:"id"`
	Kind      enums.ElementKind `json:"kind"`
	Text      *string           `json:"text,omitempty"`
	ImageData *string           `json:"image_data,omitempty"`
	Placement types.Placement   `json:"placement"`
}

// Draft is a design session persisted per owner. UploadSeq counts issued
// image uploads; AppliedSeq tracks the highest completion merged into the
// element list so stale completions can be recognized and dropped.
type Draft struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	BasePrice  decimal.Decimal `json:"base_price"`
	Elements   []Element       `json:"elements"`
	SelectedID *uuid.UUID      `json:"selected_id,omitempty"`
	UploadSeq  uint64          `json:"upload_seq"`
	AppliedSeq uint64          `json:"applied_seq"`
}

// AddToCartInput carries the variant selection accompanying a finished
// draft when it becomes a cart line.
type AddToCartInput struct {
	Title    string
	Quantity float64
	Size     string
	Color    string
	Fit      string
}

// Selected returns the currently selected element, if any.
func (d *Draft) Selected() *Element {
	if d.SelectedID == nil {
		return nil
	}
	for i := range d.Elements {
		if d.Elements[i].ID == *d.SelectedID {
			return &d.Elements[i]
		}
	}
	return nil
}

// Payload converts the draft into the opaque customization payload the
// cart and checkout layers carry.
func (d *Draft) Payload() *types.CustomizationPayload {
	if len(d.Elements) == 0 {
		return nil
	}
	elements := make([]types.CustomizationElement, 0, len(d.Elements))
	for _, el := range d.Elements {
		elements = append(elements, types.CustomizationElement{
			Kind:      el.Kind,
			Text:      el.Text,
			ImageRef:  el.ImageData,
			Placement: el.Placement,
		})
	}
	return &types.CustomizationPayload{Elements: elements}
}
