package controllers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/puntadaestudio/puntada-backend/api/responses"
	"github.com/puntadaestudio/puntada-backend/api/validators"
	studiosvc "github.com/puntadaestudio/puntada-backend/internal/studio"
	"github.com/puntadaestudio/puntada-backend/pkg/enums"
	pkgerrors "github.com/puntadaestudio/puntada-backend/pkg/errors"
	"github.com/puntadaestudio/puntada-backend/pkg/logger"
	"github.com/puntadaestudio/puntada-backend/pkg/types"
)

type createDraftRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	BasePrice string    `json:"base_price" validate:"required"`
}

// StudioCreateDraft opens a new design session for a product.
func StudioCreateDraft(svc studiosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "studio service unavailable"))
			return
		}

		ownerID, err := storefrontOwnerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createDraftRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		basePrice, err := decimal.NewFromString(payload.BasePrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid base price"))
			return
		}

		draft, err := svc.CreateDraft(r.Context(), ownerID, payload.ProductID, basePrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newDraftResponse(svc, draft))
	}
}

// StudioGetDraft reloads a design session.
func StudioGetDraft(svc studiosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "studio service unavailable"))
			return
		}

		ownerID, draftID, err := draftScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.GetDraft(r.Context(), ownerID, draftID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newDraftResponse(svc, draft))
	}
}

// StudioDeleteDraft discards a design session.
func StudioDeleteDraft(svc studiosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "studio service unavailable"))
			return
		}

		ownerID, draftID, err := draftScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteDraft(r.Context(), ownerID, draftID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type addTextRequest struct {
	Text string `json:"text" validate:"required"`
	Area string `json:"area" validate:"required"`
}

// StudioAddText appends a text element and selects it.
func StudioAddText(svc studiosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "studio service unavailable"))
			return
		}

		ownerID, draftID, err := draftScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addTextRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		area, err := enums.ParsePlacementArea(payload.Area)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid placement area"))
			return
		}

		draft, err := svc.AddTextElement(r.Context(), ownerID, draftID, payload.Text, area)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newDraftResponse(svc, draft))
	}
}

// StudioSelectElement routes subsequent placement input to one element.
func StudioSelectElement(svc studiosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "studio service unavailable"))
			return
		}

		ownerID, draftID, err := draftScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		elementID, err := parseElementID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.SelectElement(r.Context(), ownerID, draftID, elementID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newDraftResponse(svc, draft))
	}
}

// StudioRemoveElement drops an element and clears the selection.
func StudioRemoveElement(svc studiosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "studio service unavailable"))
			return
		}

		ownerID, draftID, err := draftScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		elementID, err := parseElementID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.RemoveElement(r.Context(), ownerID, draftID, elementID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newDraftResponse(svc, draft))
	}
}

type placementRequest struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	Scale    float64 `json:"scale" validate:"required"`
	Area     string  `json:"area" validate:"required"`
}

// StudioUpdatePlacement moves the selected element.
func StudioUpdatePlacement(svc studiosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "studio service unavailable"))
			return
		}

		ownerID, draftID, err := draftScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placementRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		area, err := enums.ParsePlacementArea(payload.Area)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid placement area"))
			return
		}

		draft, err := svc.UpdatePlacement(r.Context(), ownerID, draftID, types.Placement{
			X:        payload.X,
			Y:        payload.Y,
			Rotation: payload.Rotation,
			Scale:    payload.Scale,
			Area:     area,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newDraftResponse(svc, draft))
	}
}

// StudioBeginUpload reserves the next upload sequence number.
func StudioBeginUpload(svc studiosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "studio service unavailable"))
			return
		}

		ownerID, draftID, err := draftScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		seq, err := svc.BeginImageUpload(r.Context(), ownerID, draftID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]uint64{"seq": seq})
	}
}

// StudioCompleteUpload finishes an image upload. The raw image bytes are
// the request body; completions arriving after a newer one has been
// applied are dropped.
func StudioCompleteUpload(svc studiosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "studio service unavailable"))
			return
		}

		ownerID, draftID, err := draftScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		seq, err := parseUploadSeq(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		area, err := enums.ParsePlacementArea(strings.TrimSpace(r.URL.Query().Get("area")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid placement area"))
			return
		}

		data, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read upload"))
			return
		}

		draft, err := svc.CompleteImageUpload(r.Context(), ownerID, draftID, seq, data, area)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newDraftResponse(svc, draft))
	}
}

type addDraftToCartRequest struct {
	Title    string  `json:"title" validate:"required"`
	Quantity float64 `json:"quantity"`
	Size     string  `json:"size"`
	Color    string  `json:"color"`
	Fit      string  `json:"fit"`
}

// StudioAddToCart turns a finished draft into a cart line carrying the
// customization payload and the surcharge-inclusive price.
func StudioAddToCart(svc studiosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "studio service unavailable"))
			return
		}

		ownerID, draftID, err := draftScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addDraftToCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.AddToCart(r.Context(), ownerID, draftID, studiosvc.AddToCartInput{
			Title:    payload.Title,
			Quantity: payload.Quantity,
			Size:     payload.Size,
			Color:    payload.Color,
			Fit:      payload.Fit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(cart))
	}
}

// StudioPrice quotes the draft without mutating it.
func StudioPrice(svc studiosvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "studio service unavailable"))
			return
		}

		ownerID, draftID, err := draftScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.GetDraft(r.Context(), ownerID, draftID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"price": svc.Price(draft).StringFixed(2)})
	}
}

func draftScope(r *http.Request) (string, uuid.UUID, error) {
	ownerID, err := storefrontOwnerID(r)
	if err != nil {
		return "", uuid.Nil, err
	}
	raw := chi.URLParam(r, "draftId")
	draftID, err := uuid.Parse(raw)
	if err != nil {
		return "", uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid draft id")
	}
	return ownerID, draftID, nil
}

func parseElementID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "elementId")
	elementID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid element id")
	}
	return elementID, nil
}

func parseUploadSeq(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "seq")
	seq, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid upload sequence")
	}
	return seq, nil
}

type draftResponse struct {
	*studiosvc.Draft
	Price string `json:"price"`
}

func newDraftResponse(svc studiosvc.Service, draft *studiosvc.Draft) draftResponse {
	return draftResponse{
		Draft: draft,
		Price: svc.Price(draft).StringFixed(2),
	}
}
