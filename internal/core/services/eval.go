package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driving"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

// Ensure EvalService implements the interface.
var _ driving.EvalService = (*EvalService)(nil)

// EvalService scores answers against expected event uids.
type EvalService struct {
	answers driving.AnswerService
}

// NewEvalService creates an evaluation service.
func NewEvalService(answers driving.AnswerService) *EvalService {
	return &EvalService{answers: answers}
}

// Run answers every case in order. Invalid questions and LLM failures are
// recorded on their row; an unavailable index aborts the run.
func (s *EvalService) Run(ctx context.Context, cases []domain.EvalCase) (*domain.EvalReport, error) {
	report := &domain.EvalReport{Results: make([]domain.EvalRow, 0, len(cases))}
	counts := map[domain.EvalVerdict]int{
		domain.EvalCorrect:   0,
		domain.EvalPartial:   0,
		domain.EvalIncorrect: 0,
	}

	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		expected := cleanUIDs(c.ExpectedUIDs)
		row := domain.EvalRow{ID: c.ID, Question: c.Question, ExpectedUIDs: expected, PredictedUIDs: []string{}}

		req := domain.NewAskRequest(c.Question)
		req.AllowedCities = c.AllowedCities
		if c.FutureOnly != nil {
			req.FutureOnly = *c.FutureOnly
		}

		ans, err := s.answers.Ask(ctx, req)
		switch {
		case errors.Is(err, domain.ErrIndexUnavailable):
			return nil, fmt.Errorf("eval %s: %w", c.ID, err)
		case err != nil:
			row.Error = err.Error()
		default:
			row.PredictedUIDs = cleanUIDs(ans.Sources)
			row.Answer = ans.Text
		}

		row.EvalScore = ScoreUIDs(expected, row.PredictedUIDs)
		counts[row.Verdict]++
		report.Results = append(report.Results, row)
		logger.Debug("eval %s: %s (p=%.2f r=%.2f)", c.ID, row.Verdict, row.Precision, row.Recall)
	}

	n := len(report.Results)
	denom := float64(max(n, 1))
	report.Summary = domain.EvalSummary{
		N:               n,
		AccuracyCorrect: round4(float64(counts[domain.EvalCorrect]) / denom),
		RatePartial:     round4(float64(counts[domain.EvalPartial]) / denom),
		RateIncorrect:   round4(float64(counts[domain.EvalIncorrect]) / denom),
		Counts:          counts,
	}
	return report, nil
}

// ScoreUIDs compares predicted uids with expected ones as sets.
// When nothing is expected, only an empty prediction is correct.
func ScoreUIDs(expected, predicted []string) domain.EvalScore {
	exp := toSet(expected)
	pred := toSet(predicted)

	if len(exp) == 0 {
		if len(pred) == 0 {
			return domain.EvalScore{ExactMatch: true, Precision: 1, Recall: 1, F1: 1, Verdict: domain.EvalCorrect}
		}
		return domain.EvalScore{Verdict: domain.EvalIncorrect}
	}

	inter := 0
	for uid := range pred {
		if _, ok := exp[uid]; ok {
			inter++
		}
	}

	var precision, recall, f1 float64
	if len(pred) > 0 {
		precision = float64(inter) / float64(len(pred))
	}
	recall = float64(inter) / float64(len(exp))
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	exact := inter == len(exp) && inter == len(pred)
	verdict := domain.EvalIncorrect
	switch {
	case exact:
		verdict = domain.EvalCorrect
	case inter > 0:
		verdict = domain.EvalPartial
	}

	return domain.EvalScore{
		ExactMatch: exact,
		Precision:  round4(precision),
		Recall:     round4(recall),
		F1:         round4(f1),
		Verdict:    verdict,
	}
}

func cleanUIDs(uids []string) []string {
	set := toSet(uids)
	out := make([]string, 0, len(set))
	for uid := range set {
		out = append(out, uid)
	}
	sort.Strings(out)
	return out
}

func toSet(uids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(uids))
	for _, uid := range uids {
		if uid = strings.TrimSpace(uid); uid != "" {
			set[uid] = struct{}{}
		}
	}
	return set
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
