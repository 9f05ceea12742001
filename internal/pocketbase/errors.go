package pocketbase

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches any *ResponseError with status 404.
var ErrNotFound = errors.New("record not found")

// ResponseError is the backend's JSON error body plus the HTTP status.
type ResponseError struct {
	Status  int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

func (e *ResponseError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Message returns the backend-supplied description carried by err, or fallback
// when err has none (transport failures, empty error bodies).
func Message(err error, fallback string) string {
	var re *ResponseError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return fallback
}
