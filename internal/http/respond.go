package httpapi

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, middleware.ErrorResponse{
		Error:         msg,
		CorrelationID: middleware.GetCorrelationID(r.Context()),
	})
}

func writeFieldErrors(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, middleware.ErrorResponse{
		Error:         "validation failed",
		Fields:        fields,
		CorrelationID: middleware.GetCorrelationID(r.Context()),
	})
}

var errUnsupportedMediaType = errors.New("content type must be application/json")

// decode reads a JSON body. Other content types are refused so a plain HTML
// form post cannot drive the API.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/json" {
		return errUnsupportedMediaType
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(v)
}

func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errUnsupportedMediaType) {
		writeError(w, r, http.StatusUnsupportedMediaType, err.Error())
		return
	}
	writeError(w, r, http.StatusBadRequest, "invalid json")
}
