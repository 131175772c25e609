package services

import (
	"fmt"
	"math"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// GateDecision is the Confidence Gate outcome.
type GateDecision struct {
	Verdict domain.Verdict

	// Best is the smallest kept distance, +Inf when nothing was kept.
	Best float64

	// Reason explains the verdict for logs.
	Reason string
}

// Gate classifies a filtered result by its best distance alone.
// Empty is NotFound; best above ceiling is LowConfidence; otherwise OK.
func Gate(kept []domain.ScoredCandidate, ceiling float64) GateDecision {
	best := math.Inf(1)
	for _, c := range kept {
		if c.HasDistance() && c.Distance < best {
			best = c.Distance
		}
	}

	switch {
	case len(kept) == 0:
		return GateDecision{Verdict: domain.VerdictNotFound, Best: best, Reason: "no candidate survived filtering"}
	case best > ceiling:
		return GateDecision{
			Verdict: domain.VerdictLowConfidence,
			Best:    best,
			Reason:  fmt.Sprintf("best distance %.4f above ceiling %.4f", best, ceiling),
		}
	default:
		return GateDecision{
			Verdict: domain.VerdictOK,
			Best:    best,
			Reason:  fmt.Sprintf("best distance %.4f within ceiling %.4f", best, ceiling),
		}
	}
}
