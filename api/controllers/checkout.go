package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/puntadaestudio/puntada-backend/api/middleware"
	"github.com/puntadaestudio/puntada-backend/api/responses"
	"github.com/puntadaestudio/puntada-backend/api/validators"
	"github.com/puntadaestudio/puntada-backend/internal/auth/gate"
	checkoutsvc "github.com/puntadaestudio/puntada-backend/internal/checkout"
	pkgerrors "github.com/puntadaestudio/puntada-backend/pkg/errors"
	"github.com/puntadaestudio/puntada-backend/pkg/logger"
)

// CheckoutPrefill returns the authenticated buyer's contact details for
// seeding the checkout form.
func CheckoutPrefill(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		buyerID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prefill, err := svc.PrefillFor(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, prefillResponse{
			Name:  prefill.Name,
			Email: prefill.Email,
			Phone: prefill.Phone,
		})
	}
}

type prefillResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type checkoutRequest struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required"`
	Address       string `json:"address" validate:"required"`
	City          string `json:"city" validate:"required"`
	Notes         string `json:"notes"`
	TermsAccepted bool   `json:"terms_accepted"`
}

// CheckoutSubmit turns the owner's cart into a bank-transfer order ticket.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID, err := checkoutSessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ownerID, err := storefrontOwnerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := checkoutsvc.SubmitInput{
			SessionID: sessionID,
			OwnerID:   ownerID,
			Guard: checkoutsvc.Guard{
				Name:          payload.Name,
				Email:         payload.Email,
				Phone:         payload.Phone,
				Address:       payload.Address,
				City:          payload.City,
				Notes:         payload.Notes,
				TermsAccepted: payload.TermsAccepted,
			},
		}
		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			if buyerID, parseErr := uuid.Parse(raw); parseErr == nil {
				input.BuyerID = &buyerID
			}
		}

		ticket, err := svc.Submit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, ticket)
	}
}

// CheckoutDismissAuth rejects the session's pending sign-in wait. The
// parked submission fails with UNAUTHORIZED and the cart stays intact.
func CheckoutDismissAuth(gates *gate.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gates == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sign-in gate unavailable"))
			return
		}

		sessionID, err := checkoutSessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"dismissed": gates.Dismiss(sessionID)})
	}
}
