package controllers

import (
	"net/http"
	"strings"

	"github.com/puntadaestudio/puntada-backend/api/middleware"
	pkgerrors "github.com/puntadaestudio/puntada-backend/pkg/errors"
)

const sessionIDHeader = "X-Session-Id"

// storefrontOwnerID resolves who owns the cart or design draft being
// touched. Signed-in buyers are keyed by user id so the cart follows the
// account across devices; guests are keyed by the session id they present.
func storefrontOwnerID(r *http.Request) (string, error) {
	if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
		return userID, nil
	}
	sessionID := strings.TrimSpace(r.Header.Get(sessionIDHeader))
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "X-Session-Id header required for guest requests")
	}
	return sessionID, nil
}

// checkoutSessionID scopes the in-flight submission guard. Both guests
// and signed-in buyers must present one so two tabs in the same browser
// session cannot double-submit.
func checkoutSessionID(r *http.Request) (string, error) {
	sessionID := strings.TrimSpace(r.Header.Get(sessionIDHeader))
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "X-Session-Id header required")
	}
	return sessionID, nil
}
