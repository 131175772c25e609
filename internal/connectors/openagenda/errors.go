package openagenda

import (
	"errors"
	"fmt"
	"time"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// Connector errors.
var (
	// ErrNotConfigured means the API key or agenda is missing.
	ErrNotConfigured = errors.New("openagenda: not configured")
)

// APIError is a non-200 response. Body holds at most the first 500 bytes.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("OpenAgenda API error %d: %s", e.StatusCode, e.Body)
}

// Unwrap marks API failures as an unavailable source.
func (e *APIError) Unwrap() error {
	return domain.ErrSourceUnavailable
}

// RateLimitError is returned when the API keeps throttling.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("openagenda: rate limited, retry after %s", e.RetryAfter)
}

// Unwrap marks throttling as an unavailable source.
func (e *RateLimitError) Unwrap() error {
	return domain.ErrSourceUnavailable
}
