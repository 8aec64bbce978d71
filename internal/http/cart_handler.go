package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
)

type CartHandler struct {
	store    *cart.Store
	checkout *checkout.Service
}

type cartResponse struct {
	Items   []cart.Item      `json:"items"`
	Summary checkout.Summary `json:"summary"`
}

func (h *CartHandler) respond(w http.ResponseWriter, st cart.State) {
	sum := checkout.Summarize(st, checkout.DefaultTaxRate)
	if h.checkout != nil {
		sum = h.checkout.Summarize(st)
	}
	writeJSON(w, http.StatusOK, cartResponse{Items: st.Items, Summary: sum})
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.store.Snapshot())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var p cart.Product
	if err := decode(w, r, &p); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	if err := h.store.Add(r.Context(), p); err != nil {
		if errors.Is(err, cart.ErrInvalidProduct) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, r, http.StatusInternalServerError, "failed to add item")
		return
	}
	h.respond(w, h.store.Snapshot())
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	id := cart.ProductID(chi.URLParam(r, "productId"))

	var body struct {
		Quantity *int `json:"quantity"`
	}
	if err := decode(w, r, &body); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	if body.Quantity == nil {
		writeError(w, r, http.StatusBadRequest, "quantity is required")
		return
	}
	h.respond(w, h.store.Dispatch(r.Context(), cart.SetQuantity{ProductID: id, Quantity: *body.Quantity}))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := cart.ProductID(chi.URLParam(r, "productId"))
	h.respond(w, h.store.Dispatch(r.Context(), cart.Remove{ProductID: id}))
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.store.Dispatch(r.Context(), cart.Clear{}))
}
