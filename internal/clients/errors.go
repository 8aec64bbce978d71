package clients

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the grocery API, or a 2xx answer whose
// body reports "status": "error".
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("grocery api: %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := ""
	if json.Unmarshal(body, &payload) == nil {
		msg = payload.Error
		if msg == "" {
			msg = payload.Message
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(bytes.TrimSpace(body)))
	}
	if msg == "" || strings.HasPrefix(msg, "<") {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}

// result is the {"status", "message"} envelope most mutating endpoints use.
type result struct {
	Status  string          `json:"status"`
	Message json.RawMessage `json:"message"`
}

// text flattens Message, which is usually a string but is a list or object
// on a few endpoints.
func (r result) text() string {
	if len(r.Message) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(r.Message, &s) == nil {
		return s
	}
	return string(r.Message)
}

func (r result) err() error {
	if r.Status == "error" {
		return &APIError{Status: http.StatusUnprocessableEntity, Message: r.text()}
	}
	return nil
}
