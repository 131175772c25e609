package domain

import (
	"math"
	"strings"
	"time"
)

// EventMetadata describes the event a document chunk belongs to.
// Timestamps are kept as ISO-8601 strings as produced by ingestion;
// an empty string means the value is unknown.
type EventMetadata struct {
	// UID is the stable event identifier. Chunks of one event share it.
	UID string `json:"uid"`

	// OriginURL is the public page of the event.
	OriginURL string `json:"origin_url,omitempty"`

	// AgendaSlug identifies the agenda the event was fetched from.
	AgendaSlug string `json:"agenda_slug,omitempty"`

	// AgendaURL is the public page of that agenda.
	AgendaURL string `json:"agenda_url,omitempty"`

	FirstBeginDT string `json:"first_begin_dt,omitempty"`
	FirstEndDT   string `json:"first_end_dt,omitempty"`
	LastBeginDT  string `json:"last_begin_dt,omitempty"`
	LastEndDT    string `json:"last_end_dt,omitempty"`

	LocationName    string   `json:"location_name,omitempty"`
	LocationAddress string   `json:"location_address,omitempty"`
	LocationCity    string   `json:"location_city,omitempty"`
	LocationPostal  string   `json:"location_postal,omitempty"`
	LocationLat     *float64 `json:"location_lat,omitempty"`
	LocationLon     *float64 `json:"location_lon,omitempty"`

	// TypeDevenement is the agenda-specific event category.
	TypeDevenement string `json:"type_devenement,omitempty"`

	// ChunkID is the 0-based position of this chunk within the event.
	ChunkID int `json:"chunk_id"`

	// ChunkCount is the number of chunks the event was split into.
	ChunkCount int `json:"chunk_count"`
}

// BeginTime parses FirstBeginDT.
// The boolean is false when the value is missing or unparseable.
func (m EventMetadata) BeginTime() (time.Time, bool) {
	return ParseTimestamp(m.FirstBeginDT)
}

// City returns the trimmed location city.
func (m EventMetadata) City() string {
	return strings.TrimSpace(m.LocationCity)
}

// EventDocument is a chunk of text describing one event.
type EventDocument struct {
	// Content is the searchable text body.
	Content string `json:"content"`

	// Metadata describes the event.
	Metadata EventMetadata `json:"metadata"`
}

// ScoredCandidate is a document returned by the vector index with its distance.
// Lower distance means more similar. NaN marks a missing distance.
type ScoredCandidate struct {
	Document EventDocument
	Distance float64
}

// HasDistance reports whether the index supplied a usable distance.
func (c ScoredCandidate) HasDistance() bool {
	return !math.IsNaN(c.Distance) && !math.IsInf(c.Distance, 0) && c.Distance >= 0
}

// MissingDistance is the distance value for a candidate the index could not score.
func MissingDistance() float64 {
	return math.NaN()
}

// timestampLayouts are tried in order by ParseTimestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseTimestamp parses an ISO-8601 timestamp as found in event metadata.
// Values without an offset are read as UTC. Missing or malformed values
// return false.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders t the way ingestion stores it.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
