package openagenda

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func raw(t *testing.T, events ...map[string]any) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, len(events))
	for i, ev := range events {
		b, err := json.Marshal(ev)
		require.NoError(t, err)
		out[i] = b
	}
	return out
}

func ev(uid any, title, begin string) map[string]any {
	return map[string]any{
		"uid":         uid,
		"title":       map[string]any{"fr": title},
		"description": map[string]any{"fr": "Une description suffisamment longue pour passer."},
		"firstTiming": map[string]any{"begin": begin, "end": begin},
	}
}

func TestNormalise_FullEvent(t *testing.T) {
	full := map[string]any{
		"uid":         float64(12345678),
		"title":       map[string]any{"fr": "  Nuit des étoiles  "},
		"description": map[string]any{"fr": "Observation du ciel avec les astronomes du campus."},
		"keywords":    map[string]any{"fr": []any{"astronomie", " ", "nuit"}},
		"thematique":  []any{map[string]any{"id": 3, "label": map[string]any{"fr": "Sciences"}}},
		"type-devenement": []any{
			map[string]any{"id": 1, "label": map[string]any{"fr": "Conférence"}},
		},
		"firstTiming": map[string]any{"begin": "2026-11-02T20:00:00+01:00", "end": "2026-11-02T23:00:00+01:00"},
		"lastTiming":  map[string]any{"begin": "2026-11-03T20:00:00+01:00", "end": "2026-11-03T23:00:00+01:00"},
		"location": map[string]any{
			"name":       "Observatoire",
			"address":    "Rue André Ampère",
			"city":       "Orsay",
			"postalCode": "91400",
			"latitude":   48.7,
			"longitude":  "2.17",
		},
		"url": "https://openagenda.com/e/12345678",
	}

	records, stats := New().Normalise(raw(t, full), now)
	require.Len(t, records, 1)
	assert.Equal(t, 1, stats.Kept)
	assert.Equal(t, 1, stats.Upcoming)

	r := records[0]
	assert.Equal(t, "12345678", r.UID)
	assert.Equal(t, "Nuit des étoiles", r.Title)
	assert.Equal(t, []string{"astronomie", "nuit"}, r.Keywords)
	assert.Equal(t, []string{"Sciences"}, r.Thematique)
	assert.Equal(t, "Conférence", r.TypeDevenement)
	assert.Equal(t, time.Date(2026, 11, 2, 19, 0, 0, 0, time.UTC), r.FirstBegin)
	require.NotNil(t, r.LastEnd)
	assert.Equal(t, time.Date(2026, 11, 3, 22, 0, 0, 0, time.UTC), *r.LastEnd)
	assert.Equal(t, "91400", r.LocationPostal)
	require.NotNil(t, r.LocationLat)
	require.NotNil(t, r.LocationLon)
	assert.InDelta(t, 2.17, *r.LocationLon, 1e-9)
	assert.Equal(t, "https://openagenda.com/e/12345678", r.OriginURL)

	assert.Equal(t, "Titre: Nuit des étoiles\n"+
		"Description: Observation du ciel avec les astronomes du campus.\n"+
		"Date: 2026-11-02 19:00 UTC\n"+
		"Lieu: Observatoire\n"+
		"Adresse: Rue André Ampère\n"+
		"Ville: Orsay\n"+
		"Mots-clés: astronomie, nuit", r.Document)
}

func TestNormalise_Filters(t *testing.T) {
	shortDescNoPlace := ev("2", "Atelier peinture", "2026-11-01T10:00:00Z")
	shortDescNoPlace["description"] = map[string]any{"fr": "court"}

	shortDescWithPlace := ev("3", "Atelier sculpture", "2026-11-01T10:00:00Z")
	shortDescWithPlace["description"] = map[string]any{"fr": "court"}
	shortDescWithPlace["location"] = map[string]any{"name": "Maison des arts"}

	undated := ev("4", "Sans date connue", "")
	undated["firstTiming"] = nil

	records, stats := New().Normalise(append(raw(t,
		ev("1", "Bal", "2026-11-01T10:00:00Z"),
		shortDescNoPlace,
		shortDescWithPlace,
		undated,
		ev("5", "Vieux concert", "2025-01-01T10:00:00Z"),
		ev("6", "Exposition photo", "2026-03-01T10:00:00Z"),
	), json.RawMessage(`"not an object"`), json.RawMessage(`null`)), now)

	uids := make([]string, len(records))
	for i, r := range records {
		uids[i] = r.UID
	}
	assert.Equal(t, []string{"6", "3"}, uids, "past-year events come before upcoming ones")

	assert.Equal(t, 8, stats.Raw)
	assert.Equal(t, 2, stats.Malformed)
	assert.Equal(t, 1, stats.Undated)
	assert.Equal(t, 2, stats.Dropped)
	assert.Equal(t, 1, stats.Stale)
	assert.Equal(t, 2, stats.Kept)
	assert.Equal(t, 1, stats.PastYear)
	assert.Equal(t, 1, stats.Upcoming)
}

func TestNormalise_DedupeFirstWins(t *testing.T) {
	first := ev("7", "Première version", "2026-11-01T10:00:00Z")
	second := ev("7", "Seconde version", "2026-11-02T10:00:00Z")

	records, stats := New().Normalise(raw(t, first, second), now)
	require.Len(t, records, 1)
	assert.Equal(t, "Première version", records[0].Title)
	assert.Equal(t, 1, stats.Duplicate)
}

func TestNormalise_OriginalURLPreferred(t *testing.T) {
	e := ev("8", "Conférence", "2026-11-01T10:00:00Z")
	e["originalUrl"] = "https://example.org/original"
	e["url"] = "https://example.org/fallback"

	records, _ := New().Normalise(raw(t, e), now)
	require.Len(t, records, 1)
	assert.Equal(t, "https://example.org/original", records[0].OriginURL)
}

func TestNormalise_BoundaryIsUpcoming(t *testing.T) {
	records, stats := New().Normalise(raw(t, ev("9", "Pile maintenant", now.Format(time.RFC3339))), now)
	require.Len(t, records, 1)
	assert.Equal(t, 1, stats.Upcoming)
}

func TestDocumentText_OmitsEmptyFields(t *testing.T) {
	text := DocumentText(domain.EventRecord{Title: "Concert", Keywords: []string{" "}})
	assert.Equal(t, "Titre: Concert", text)
}
