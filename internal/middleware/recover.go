package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse is the body of every error the local API writes.
type ErrorResponse struct {
	Error         string            `json:"error"`
	Fields        map[string]string `json:"fields,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
}

func Recover(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					cid := GetCorrelationID(r.Context())
					logger.Error("panic serving request",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
						zap.String("correlation_id", cid),
						zap.Stack("stack"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(ErrorResponse{
						Error:         "internal server error",
						CorrelationID: cid,
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
