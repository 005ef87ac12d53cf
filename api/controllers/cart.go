package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/puntadaestudio/puntada-backend/api/responses"
	"github.com/puntadaestudio/puntada-backend/api/validators"
	cartsvc "github.com/puntadaestudio/puntada-backend/internal/cart"
	pkgerrors "github.com/puntadaestudio/puntada-backend/pkg/errors"
	"github.com/puntadaestudio/puntada-backend/pkg/logger"
	"github.com/puntadaestudio/puntada-backend/pkg/types"
)

// CartFetch returns the owner's current cart snapshot with derived totals.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		ownerID, err := storefrontOwnerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Get(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

type addItemRequest struct {
	ProductID     uuid.UUID                   `json:"product_id" validate:"required"`
	Title         string                      `json:"title" validate:"required"`
	UnitPrice     string                      `json:"unit_price" validate:"required"`
	Quantity      float64                     `json:"quantity" validate:"required"`
	Size          string                      `json:"size"`
	Color         string                      `json:"color"`
	Fit           string                      `json:"fit"`
	ImageRef      string                      `json:"image_ref"`
	Customization *types.CustomizationPayload `json:"customization,omitempty"`
}

func (req addItemRequest) toInput() (cartsvc.AddItemInput, error) {
	price, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		return cartsvc.AddItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit price")
	}
	if price.IsNegative() {
		return cartsvc.AddItemInput{}, pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative")
	}
	return cartsvc.AddItemInput{
		ProductID:     req.ProductID,
		Title:         req.Title,
		UnitPrice:     price,
		Quantity:      req.Quantity,
		Size:          req.Size,
		Color:         req.Color,
		Fit:           req.Fit,
		ImageRef:      req.ImageRef,
		Customization: req.Customization,
	}, nil
}

// CartAddItem merges the selection into the cart.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		ownerID, err := storefrontOwnerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.AddItem(r.Context(), ownerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

type updateQuantityRequest struct {
	Quantity float64 `json:"quantity" validate:"required"`
}

// CartUpdateQuantity sets a line's quantity, clamped to a whole number of
// at least one.
func CartUpdateQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		ownerID, err := storefrontOwnerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := parseLineID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.UpdateQuantity(r.Context(), ownerID, lineID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

// CartRemoveItem drops a line from the cart. Removing an absent line is
// not an error.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		ownerID, err := storefrontOwnerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := parseLineID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.RemoveItem(r.Context(), ownerID, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

// CartClear empties the owner's cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		ownerID, err := storefrontOwnerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Clear(r.Context(), ownerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(cartsvc.Cart{}))
	}
}

func parseLineID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "lineId")
	lineID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid line id")
	}
	return lineID, nil
}

type cartResponse struct {
	Lines []cartsvc.Line `json:"lines"`
	Count int            `json:"count"`
	Total string         `json:"total"`
}

func newCartResponse(cart cartsvc.Cart) cartResponse {
	lines := cart.Lines
	if lines == nil {
		lines = []cartsvc.Line{}
	}
	return cartResponse{
		Lines: lines,
		Count: cart.Count(),
		Total: cart.Total().StringFixed(2),
	}
}
