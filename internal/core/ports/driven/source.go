package driven

import (
	"context"
	"encoding/json"
	"time"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// EventSource fetches raw events from an upstream agenda.
type EventSource interface {
	// Name identifies the source (the agenda slug for OpenAgenda).
	Name() string

	// FetchAll pages through every event of the agenda.
	FetchAll(ctx context.Context) ([]json.RawMessage, error)
}

// EventNormaliser turns raw upstream events into cleaned records.
type EventNormaliser interface {
	// Normalise parses, filters and deduplicates raw events relative to now.
	// Records that fail validation are counted in the stats, never returned.
	Normalise(raw []json.RawMessage, now time.Time) ([]domain.EventRecord, NormaliseStats)
}

// NormaliseStats counts what happened to raw events during cleaning.
type NormaliseStats struct {
	Raw       int `json:"raw"`
	Undated   int `json:"undated"`
	Malformed int `json:"malformed"`
	Dropped   int `json:"dropped"`
	Stale     int `json:"stale"`
	Duplicate int `json:"duplicate"`
	Kept      int `json:"kept"`
	PastYear  int `json:"past_year"`
	Upcoming  int `json:"upcoming"`
}

// EventFileStore persists ingestion outputs.
type EventFileStore interface {
	// WriteRaw stores raw upstream events as {"events": [...]}.
	WriteRaw(path string, events []json.RawMessage) error

	// WriteRecords stores cleaned records as JSON lines.
	WriteRecords(path string, records []domain.EventRecord) error
}
