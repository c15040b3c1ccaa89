package gateway

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func newAPIError(status int, body Body) *APIError {
	msg := body.Message()
	if msg == "" {
		msg = fmt.Sprintf("API Error: %d", status)
	}
	return &APIError{Status: status, Message: msg}
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
