// Package openagenda cleans raw OpenAgenda events into index-ready records.
package openagenda

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.EventNormaliser = (*Normaliser)(nil)

// Cleaning thresholds.
const (
	// MinTitleLength is the shortest title kept, in characters.
	MinTitleLength = 5

	// MinDescriptionLength is the shortest description kept when the
	// event has no location name.
	MinDescriptionLength = 30

	// DefaultMaxAge is how far back past events are kept.
	DefaultMaxAge = 365 * 24 * time.Hour
)

// Normaliser handles raw OpenAgenda v2 events.
type Normaliser struct {
	maxAge time.Duration
}

// New creates a new OpenAgenda normaliser.
func New() *Normaliser {
	return &Normaliser{maxAge: DefaultMaxAge}
}

// Normalise parses, filters and deduplicates raw events relative to now.
//
// Events without a parseable first begin, with a title shorter than
// MinTitleLength, or with a short description and no location name are
// dropped. Events that began more than a year before now are stale.
// Past-year events come first, then upcoming ones; the first record of
// a uid wins.
func (n *Normaliser) Normalise(raw []json.RawMessage, now time.Time) ([]domain.EventRecord, driven.NormaliseStats) {
	stats := driven.NormaliseStats{Raw: len(raw)}
	now = now.UTC()
	oldest := now.Add(-n.maxAge)

	var past, upcoming []domain.EventRecord
	for _, msg := range raw {
		ev, err := decodeEvent(msg)
		if err != nil {
			stats.Malformed++
			continue
		}

		rec, ok := toRecord(ev)
		if !ok {
			stats.Undated++
			continue
		}

		if utf8.RuneCountInString(rec.Title) < MinTitleLength {
			stats.Dropped++
			continue
		}
		if utf8.RuneCountInString(rec.Description) < MinDescriptionLength && rec.LocationName == "" {
			stats.Dropped++
			continue
		}

		switch {
		case !rec.FirstBegin.Before(now):
			upcoming = append(upcoming, rec)
		case !rec.FirstBegin.Before(oldest):
			past = append(past, rec)
		default:
			stats.Stale++
		}
	}

	seen := make(map[string]struct{}, len(past)+len(upcoming))
	records := make([]domain.EventRecord, 0, len(past)+len(upcoming))
	for _, rec := range append(past, upcoming...) {
		if _, dup := seen[rec.UID]; dup {
			stats.Duplicate++
			continue
		}
		seen[rec.UID] = struct{}{}

		rec.Document = DocumentText(rec)
		records = append(records, rec)
		if rec.FirstBegin.Before(now) {
			stats.PastYear++
		} else {
			stats.Upcoming++
		}
	}
	stats.Kept = len(records)

	return records, stats
}

// DocumentText renders the searchable text of an event, one labelled
// line per non-empty field.
func DocumentText(rec domain.EventRecord) string {
	date := ""
	if !rec.FirstBegin.IsZero() {
		date = rec.FirstBegin.UTC().Format("2006-01-02 15:04") + " UTC"
	}

	var keywords []string
	for _, k := range rec.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}

	fields := []struct{ label, value string }{
		{"Titre", rec.Title},
		{"Description", rec.Description},
		{"Date", date},
		{"Lieu", rec.LocationName},
		{"Adresse", rec.LocationAddress},
		{"Ville", rec.LocationCity},
		{"Mots-clés", strings.Join(keywords, ", ")},
	}

	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if v := strings.TrimSpace(f.value); v != "" {
			lines = append(lines, f.label+": "+v)
		}
	}
	return strings.Join(lines, "\n")
}

type event map[string]any

func decodeEvent(msg json.RawMessage) (event, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	var ev event
	if err := dec.Decode(&ev); err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, fmt.Errorf("event is not an object")
	}
	return ev, nil
}

func toRecord(ev event) (domain.EventRecord, bool) {
	begin, ok := parseTime(ev.get("firstTiming.begin"))
	if !ok {
		return domain.EventRecord{}, false
	}

	rec := domain.EventRecord{
		UID:             scalar(ev.get("uid")),
		Title:           strings.TrimSpace(scalar(ev.get("title.fr"))),
		Description:     strings.TrimSpace(scalar(ev.get("description.fr"))),
		Keywords:        labels(ev.get("keywords.fr")),
		Thematique:      labels(ev.get("thematique")),
		TypeDevenement:  strings.Join(labels(ev.get("type-devenement")), ", "),
		FirstBegin:      begin,
		FirstEnd:        optionalTime(ev.get("firstTiming.end")),
		LastBegin:       optionalTime(ev.get("lastTiming.begin")),
		LastEnd:         optionalTime(ev.get("lastTiming.end")),
		LocationName:    strings.TrimSpace(scalar(ev.get("location.name"))),
		LocationAddress: strings.TrimSpace(scalar(ev.get("location.address"))),
		LocationCity:    strings.TrimSpace(scalar(ev.get("location.city"))),
		LocationPostal:  strings.TrimSpace(scalar(ev.get("location.postalCode"))),
		LocationLat:     number(ev.get("location.latitude")),
		LocationLon:     number(ev.get("location.longitude")),
		OriginURL:       scalar(ev.get("originalUrl")),
	}
	if rec.OriginURL == "" {
		rec.OriginURL = scalar(ev.get("url"))
	}
	return rec, true
}

// get follows a dotted path through nested objects.
func (e event) get(path string) any {
	var cur any = map[string]any(e)
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		if cur, ok = m[key]; !ok {
			return nil
		}
	}
	return cur
}

// scalar renders strings and numbers; anything else is empty.
func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// labels flattens a list (or single value) of strings, numbers or
// {"label": {"fr": ...}} objects.
func labels(v any) []string {
	var items []any
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		items = x
	default:
		items = []any{x}
	}

	var out []string
	for _, item := range items {
		var s string
		if m, ok := item.(map[string]any); ok {
			s = scalar(event(m).get("label.fr"))
			if s == "" {
				s = scalar(m["label"])
			}
			if s == "" {
				s = scalar(m["fr"])
			}
		} else {
			s = scalar(item)
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func number(v any) *float64 {
	var f float64
	var err error
	switch x := v.(type) {
	case json.Number:
		f, err = x.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return &f
}

func parseTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	t, ok := domain.ParseTimestamp(s)
	if !ok {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func optionalTime(v any) *time.Time {
	t, ok := parseTime(v)
	if !ok {
		return nil
	}
	return &t
}
