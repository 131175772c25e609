package domain

import "time"

// Verdict is the Confidence Gate's classification of a retrieval outcome.
type Verdict string

// Available verdicts.
const (
	// VerdictOK means the kept set is usable for answer synthesis.
	VerdictOK Verdict = "ok"

	// VerdictNotFound means nothing survived filtering.
	VerdictNotFound Verdict = "not_found"

	// VerdictLowConfidence means even the best kept candidate is too far.
	VerdictLowConfidence Verdict = "low_confidence"
)

// IsValid returns true if the verdict is recognised.
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictOK, VerdictNotFound, VerdictLowConfidence:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (v Verdict) String() string {
	return string(v)
}

// Description returns a human-readable description of the verdict.
func (v Verdict) Description() string {
	switch v {
	case VerdictOK:
		return "Answered from retrieved events"
	case VerdictNotFound:
		return "No event matched"
	case VerdictLowConfidence:
		return "No event close enough"
	default:
		return unknownDescription
	}
}

// AskRequest is the query-facing input.
type AskRequest struct {
	// Question is the free-text question.
	Question string

	// AllowedCities is nil when the caller did not restrict cities.
	// A non-nil slice is a restriction and must survive cleaning.
	AllowedCities []string

	// FutureOnly keeps only upcoming events. Defaults to true via NewAskRequest.
	FutureOnly bool
}

// NewAskRequest returns a request with the default freshness policy.
func NewAskRequest(question string) AskRequest {
	return AskRequest{Question: question, FutureOnly: true}
}

// Citation is the structural record of one document an answer was built from.
type Citation struct {
	Metadata EventMetadata `json:"metadata"`
	Excerpt  string        `json:"excerpt"`
}

// Answer is the outcome of an ask.
type Answer struct {
	// ID identifies the request in logs and the ask history.
	ID string

	// Text is the user-facing answer, including the sources block when OK.
	Text string

	// Verdict is the gate decision.
	Verdict Verdict

	// Sources are the sorted unique uids of the documents used.
	// Always empty unless Verdict is OK.
	Sources []string

	// Citations mirror the documents used, in rank order.
	Citations []Citation

	// BestDistance is the best kept distance, +Inf when none.
	BestDistance float64

	// Relaxed reports whether the relaxed pass was used.
	Relaxed bool

	// Duration is the wall time of the ask.
	Duration time.Duration
}

// AskRecord is one entry in the ask history.
type AskRecord struct {
	ID            string
	Question      string
	AllowedCities []string
	FutureOnly    bool
	Verdict       Verdict
	Sources       []string
	BestDistance  *float64
	Relaxed       bool
	Duration      time.Duration
	Error         string
	CreatedAt     time.Time
}
