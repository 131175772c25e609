package services

import (
	"strings"
	"time"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// FilterParams are the predicates of one filter pass.
type FilterParams struct {
	// AllowedCities restricts location. Empty means unrestricted.
	AllowedCities []string

	// FutureOnly rejects events starting before Now.
	FutureOnly bool

	// MaxDistance is the admission bound for this pass.
	MaxDistance float64

	// KFinal caps the output.
	KFinal int

	// Now is the reference instant for freshness.
	Now time.Time
}

// FilterCandidates returns the candidates that satisfy the location,
// freshness and distance predicates, in input order.
// Scanning stops as soon as KFinal candidates are kept.
// Missing cities, unparseable dates and missing distances are rejected.
func FilterCandidates(candidates []domain.ScoredCandidate, p FilterParams) []domain.ScoredCandidate {
	kept := make([]domain.ScoredCandidate, 0, min(max(p.KFinal, 0), len(candidates)))
	if p.KFinal <= 0 {
		return kept
	}

	allowed := newCitySet(p.AllowedCities)
	for _, c := range candidates {
		if len(kept) >= p.KFinal {
			break
		}
		if !allowed.admits(c.Document.Metadata) {
			continue
		}
		if p.FutureOnly && !isUpcoming(c.Document.Metadata, p.Now) {
			continue
		}
		if !c.HasDistance() || c.Distance > p.MaxDistance {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func isUpcoming(md domain.EventMetadata, now time.Time) bool {
	begin, ok := md.BeginTime()
	if !ok {
		return false
	}
	return !begin.Before(now)
}

// citySet matches cities trimmed and case-insensitively.
// A nil set admits everything.
type citySet map[string]struct{}

func newCitySet(cities []string) citySet {
	set := make(citySet, len(cities))
	for _, c := range cities {
		if k := cityKey(c); k != "" {
			set[k] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

func (s citySet) admits(md domain.EventMetadata) bool {
	if s == nil {
		return true
	}
	k := cityKey(md.LocationCity)
	if k == "" {
		return false
	}
	_, ok := s[k]
	return ok
}

// cityKey trims surrounding blanks; spelling and case must match the
// whitelist exactly. Query cities are normalised by ValidateCities.
func cityKey(city string) string {
	return strings.TrimSpace(city)
}
