package airtable

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

// APIError represents an Airtable API error response.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	Table      string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Type != "" {
		return fmt.Sprintf("airtable: API error %d %s: %s (table %s)", e.StatusCode, e.Type, msg, e.Table)
	}
	return fmt.Sprintf("airtable: API error %d: %s (table %s)", e.StatusCode, msg, e.Table)
}

// Unwrap maps well-known statuses to domain errors.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	default:
		return nil
	}
}

// IsUnauthorized checks if the error indicates an invalid or missing token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsForbidden checks if the token lacks access to the base or table.
func IsForbidden(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusForbidden
	}
	return false
}
