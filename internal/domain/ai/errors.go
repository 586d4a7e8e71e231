package ai

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrMissingCredential is returned when no bearer token was configured for the provider.
var ErrMissingCredential = errors.New("ai credential not configured")

// ErrEmptyResponse is returned when the provider answered 200 without any choice.
var ErrEmptyResponse = errors.New("ai response has no choices")

// StatusError carries a non-200 provider response verbatim.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ai provider status %d: %s", e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrQuotaExceeded) match a 429 response.
func (e *StatusError) Is(target error) bool {
	return target == ErrQuotaExceeded && e.StatusCode == http.StatusTooManyRequests
}
