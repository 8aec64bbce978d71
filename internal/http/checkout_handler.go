package httpapi

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

type CheckoutHandler struct {
	checkout *checkout.Service
	session  Session
	logger   *zap.Logger
}

func (h *CheckoutHandler) current() (auth.User, bool) {
	if h.session == nil {
		return auth.User{}, false
	}
	return h.session.Current()
}

func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	if h.checkout == nil {
		writeError(w, r, http.StatusServiceUnavailable, "checkout is not configured")
		return
	}

	var req checkout.Request
	if err := decode(w, r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	u, _ := h.current()
	receipt, err := h.checkout.PlaceOrder(r.Context(), u.ID, req)
	if err != nil {
		h.writeCheckoutError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (h *CheckoutHandler) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *checkout.ValidationError
	var apiErr *clients.APIError

	switch {
	case errors.As(err, &verr):
		writeFieldErrors(w, r, verr.Fields)
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, r, http.StatusConflict, "Your cart is empty")
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		writeError(w, r, http.StatusConflict, "Your order is already being placed")
	case errors.Is(err, auth.ErrNotSignedIn):
		writeError(w, r, http.StatusUnauthorized, "Please log in to place an order")
	case errors.As(err, &apiErr):
		writeError(w, r, http.StatusBadGateway, apiErr.Message)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusServiceUnavailable, "checkout was interrupted")
	default:
		h.logger.Error("checkout failed", zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "Something went wrong. Try again.")
	}
}

type sessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	User          *auth.User `json:"user,omitempty"`
}

func (h *CheckoutHandler) Session(w http.ResponseWriter, r *http.Request) {
	u, ok := h.current()
	if !ok {
		writeJSON(w, http.StatusOK, sessionResponse{})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, User: &u})
}
