package httpapi

import (
	"errors"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/countries"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

type ValidationHandler struct {
	countries CountrySource
}

func (h *ValidationHandler) lookup(r *http.Request, cca2 string) countries.Country {
	if h.countries == nil || cca2 == "" {
		return countries.Country{}
	}
	return h.countries.Lookup(r.Context(), cca2)
}

func (h *ValidationHandler) Countries(w http.ResponseWriter, r *http.Request) {
	list := []countries.Country{}
	if h.countries != nil {
		list = h.countries.List(r.Context())
	}
	writeJSON(w, http.StatusOK, list)
}

type postalRequest struct {
	CountryCode string `json:"countryCode"`
	Code        string `json:"code"`
}

type postalResponse struct {
	Valid    bool   `json:"valid"`
	Required bool   `json:"required"`
	Format   string `json:"format,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (h *ValidationHandler) Postal(w http.ResponseWriter, r *http.Request) {
	var req postalRequest
	if err := decode(w, r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	rule := h.lookup(r, req.CountryCode).Locale().Postal
	resp := postalResponse{Valid: true, Required: rule.Required(), Format: rule.Template}
	if err := rule.Validate(req.Code); err != nil {
		resp.Valid = false
		if errors.Is(err, validation.ErrPostalLength) {
			resp.Error = "Expected format: " + rule.Template
		} else {
			resp.Error = "Invalid postal code format"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type phoneRequest struct {
	CountryCode string `json:"countryCode"`
	Phone       string `json:"phone"`
}

type phoneResponse struct {
	Valid       bool   `json:"valid"`
	Formatted   string `json:"formatted,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (h *ValidationHandler) Phone(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if err := decode(w, r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	c := h.lookup(r, req.CountryCode)
	resp := phoneResponse{Valid: true, Placeholder: validation.PhonePlaceholder(c.CCA2, c.PhoneCode)}
	if err := validation.ValidatePhone(req.Phone, c.CCA2); err != nil {
		resp.Valid = false
		resp.Error = "Invalid contact number for selected country"
	} else if c.CCA2 != "" {
		resp.Formatted = validation.FormatPhone(req.Phone, c.CCA2)
	}
	writeJSON(w, http.StatusOK, resp)
}
