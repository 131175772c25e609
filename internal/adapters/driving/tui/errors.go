package tui

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("tui: answer service is required")

// ErrRebuildUnavailable is returned when a rebuild is requested without a rebuild service.
var ErrRebuildUnavailable = errors.New("tui: rebuild is not configured")
