package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/puntadaestudio/puntada-backend/pkg/enums"
)

// Placement positions an element on its target area. X and Y are
// percentages of the printable area in [0,100].
type Placement struct {
	X        float64             `json:"x"`
	Y        float64             `json:"y"`
	Rotation float64             `json:"rotation"`
	Scale    float64             `json:"scale"`
	Area     enums.PlacementArea `json:"area"`
}

// CustomizationElement is a single text run or embedded image placed on the
// garment. Exactly one of Text/ImageRef is set depending on Kind.
type CustomizationElement struct {
	Kind      enums.ElementKind `json:"kind"`
	Text      *string           `json:"text,omitempty"`
	ImageRef  *string           `json:"image_ref,omitempty"`
	Placement Placement         `json:"placement"`
}

// CustomizationPayload is the ordered element list a design session
// produces. Cart and checkout carry it opaquely; only the studio and,
// downstream, fulfillment interpret it.
type CustomizationPayload struct {
	Elements []CustomizationElement `json:"elements"`
}

// IsEmpty reports whether the payload carries no elements.
func (p *CustomizationPayload) IsEmpty() bool {
	return p == nil || len(p.Elements) == 0
}

// Fingerprint returns a stable content hash of the payload. Two payloads
// with identical elements in identical order share a fingerprint, which is
// what makes the payload usable as part of a cart merge key.
func (p *CustomizationPayload) Fingerprint() string {
	if p.IsEmpty() {
		return ""
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
