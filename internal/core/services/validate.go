package services

import (
	"sort"
	"strings"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// ValidateQuestion trims the question and rejects blank input.
func ValidateQuestion(question string) (string, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return "", &domain.InputError{Field: "question", Err: domain.ErrEmptyQuestion}
	}
	return q, nil
}

// ValidateCities cleans a requested city filter against the whitelist.
//
// nil means no filter was requested and yields nil. Otherwise blank
// entries are dropped and duplicates removed; an empty result or any
// city outside the whitelist is malformed input. Matching ignores case
// and surrounding spaces; accepted cities take the whitelist spelling.
// An empty whitelist accepts any city.
func ValidateCities(requested, whitelist []string) ([]string, error) {
	if requested == nil {
		return nil, nil
	}

	canonical := make(map[string]string, len(whitelist))
	for _, c := range whitelist {
		if k := foldCity(c); k != "" {
			canonical[k] = strings.TrimSpace(c)
		}
	}

	seen := make(map[string]struct{}, len(requested))
	cleaned := make([]string, 0, len(requested))
	var unknown []string
	for _, c := range requested {
		k := foldCity(c)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		if len(canonical) == 0 {
			cleaned = append(cleaned, strings.TrimSpace(c))
			continue
		}
		name, ok := canonical[k]
		if !ok {
			unknown = append(unknown, strings.TrimSpace(c))
			continue
		}
		cleaned = append(cleaned, name)
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		allowed := make([]string, 0, len(canonical))
		for _, name := range canonical {
			allowed = append(allowed, name)
		}
		sort.Strings(allowed)
		return nil, &domain.InputError{Field: "allowed_cities", Values: unknown, Allowed: allowed, Err: domain.ErrUnknownCity}
	}
	if len(cleaned) == 0 {
		return nil, &domain.InputError{Field: "allowed_cities", Err: domain.ErrEmptyCityFilter}
	}
	return cleaned, nil
}

// foldCity is the lookup key for query cities: trimmed and lowercased.
func foldCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
