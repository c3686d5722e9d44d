package sessionapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoToken is returned when a call is attempted before a token is set.
var ErrNoToken = errors.New("session API token not set")

// APIError is a non-2xx answer from the session service.
type APIError struct {
	Operation string
	Status    int
	Body      string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("session API %s failed: %d %s", e.Operation, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("session API %s failed: %d %s", e.Operation, e.Status, e.Body)
}

// Temporary reports whether the service may succeed on a later attempt.
func (e *APIError) Temporary() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

type createRequest struct {
	OS      string `json:"os"`
	Version string `json:"version"`
	Browser string `json:"browser"`
	URL     string `json:"url"`
}

type createResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type navigateRequest struct {
	URL string `json:"url"`
}

// countsAgainstBreaker keeps client mistakes (bad token, bad input) from
// opening the circuit.
func countsAgainstBreaker(err error) bool {
	if err == nil || errors.Is(err, ErrNoToken) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}
