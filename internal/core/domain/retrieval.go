package domain

import (
	"errors"
	"math"
)

// RetrievalQuery is the input of one retrieval.
type RetrievalQuery struct {
	// Question is the free-text user question.
	Question string

	// AllowedCities restricts results to these cities.
	// Empty means unrestricted.
	AllowedCities []string

	// FutureOnly keeps only events starting at or after now.
	FutureOnly bool

	// KFetch is how many candidates to request from the index.
	KFetch int

	// KFinal caps the number of kept candidates.
	KFinal int

	// MaxDistance is the strict distance admission threshold.
	MaxDistance float64
}

// RetrievalPolicy holds the tunable shape of the retrieval algorithm:
// over-fetch size, result cap, strict threshold, one relaxation step,
// the minimum floor that triggers it and the absolute confidence ceiling.
type RetrievalPolicy struct {
	KFetch            int     `json:"k_fetch"`
	KFinal            int     `json:"k_final"`
	MaxDistance       float64 `json:"max_distance"`
	RelaxStep         float64 `json:"relax_step"`
	MinResults        int     `json:"min_results"`
	ConfidenceCeiling float64 `json:"confidence_ceiling"`
}

// DefaultRetrievalPolicy returns the observed production defaults.
func DefaultRetrievalPolicy() RetrievalPolicy {
	return RetrievalPolicy{
		KFetch:            30,
		KFinal:            5,
		MaxDistance:       1.0,
		RelaxStep:         0.2,
		MinResults:        3,
		ConfidenceCeiling: 1.3,
	}
}

// Validate checks the policy is internally consistent.
func (p RetrievalPolicy) Validate() error {
	switch {
	case p.KFetch <= 0:
		return errors.New("k_fetch must be positive")
	case p.KFinal <= 0:
		return errors.New("k_final must be positive")
	case p.KFinal > p.KFetch:
		return errors.New("k_final must not exceed k_fetch")
	case p.MaxDistance < 0 || math.IsNaN(p.MaxDistance):
		return errors.New("max_distance must be a non-negative number")
	case p.RelaxStep < 0 || math.IsNaN(p.RelaxStep):
		return errors.New("relax_step must be a non-negative number")
	case p.MinResults < 0:
		return errors.New("min_results must not be negative")
	case p.ConfidenceCeiling < p.MaxDistance:
		return errors.New("confidence_ceiling must not be below max_distance")
	}
	return nil
}

// Query builds a RetrievalQuery for a question under this policy.
func (p RetrievalPolicy) Query(question string, allowedCities []string, futureOnly bool) RetrievalQuery {
	return RetrievalQuery{
		Question:      question,
		AllowedCities: allowedCities,
		FutureOnly:    futureOnly,
		KFetch:        p.KFetch,
		KFinal:        p.KFinal,
		MaxDistance:   p.MaxDistance,
	}
}

// RetrievalResult is the ordered, policy-compliant outcome of a retrieval.
type RetrievalResult struct {
	// Candidates are best first, at most KFinal long.
	Candidates []ScoredCandidate

	// Fetched is how many candidates the index returned.
	Fetched int

	// Relaxed is true when the relaxed pass produced Candidates.
	Relaxed bool

	// Threshold is the distance bound of the pass that produced Candidates.
	Threshold float64
}

// Documents returns the kept documents in rank order.
func (r RetrievalResult) Documents() []EventDocument {
	docs := make([]EventDocument, len(r.Candidates))
	for i, c := range r.Candidates {
		docs[i] = c.Document
	}
	return docs
}

// BestDistance returns the smallest distance kept, or +Inf when empty.
func (r RetrievalResult) BestDistance() float64 {
	best := math.Inf(1)
	for _, c := range r.Candidates {
		if c.Distance < best {
			best = c.Distance
		}
	}
	return best
}
