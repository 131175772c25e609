package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyQuestion indicates the question is empty or whitespace only.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrEmptyCityFilter indicates a city filter was provided but nothing
	// survived cleaning.
	ErrEmptyCityFilter = errors.New("allowed_cities is empty after cleaning")

	// ErrUnknownCity indicates a requested city is outside the whitelist.
	ErrUnknownCity = errors.New("city not allowed")

	// ErrIndexUnavailable indicates the vector index artifact is missing,
	// unreadable or failed to answer a search.
	// It must never be reported as an empty result.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured or failed.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Questions cannot be turned into query vectors without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRebuildFailed indicates the index rebuild did not complete.
	// The previously serving index is left untouched.
	ErrRebuildFailed = errors.New("index rebuild failed")

	// ErrRebuildInProgress indicates a rebuild is already running.
	ErrRebuildInProgress = errors.New("rebuild in progress")

	// ErrSourceUnavailable indicates the upstream event source failed.
	ErrSourceUnavailable = errors.New("event source unavailable")

	// ErrNotImplemented indicates functionality is not available in this mode.
	ErrNotImplemented = errors.New("not implemented")
)

// InputError describes a rejected request field.
// It matches both its specific cause and ErrInvalidInput under errors.Is.
type InputError struct {
	// Field is the request field at fault.
	Field string

	// Values lists the offending values, if any.
	Values []string

	// Allowed lists the accepted values, if the field is constrained.
	Allowed []string

	// Err is the specific cause (ErrEmptyQuestion, ErrUnknownCity, ...).
	Err error
}

// Error implements error.
func (e *InputError) Error() string {
	var b strings.Builder
	b.WriteString(e.Field)
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if len(e.Values) > 0 {
		fmt.Fprintf(&b, " %v", e.Values)
	}
	if len(e.Allowed) > 0 {
		fmt.Fprintf(&b, " (allowed: %v)", e.Allowed)
	}
	return b.String()
}

// Unwrap exposes both the cause and ErrInvalidInput.
func (e *InputError) Unwrap() []error {
	return []error{e.Err, ErrInvalidInput}
}
