package services

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

func defaultParams() FilterParams {
	return FilterParams{FutureOnly: true, MaxDistance: 1.0, KFinal: 5, Now: testNow}
}

func TestFilterCandidates_PreservesOrder(t *testing.T) {
	cands := []domain.ScoredCandidate{
		upcoming("a", "Orsay", 0.2),
		upcoming("b", "Lyon", 0.3),
		upcoming("c", "Paris", 0.4),
		upcoming("d", "Orsay", 0.5),
	}
	p := defaultParams()
	p.AllowedCities = []string{"Orsay", "Paris"}

	got := FilterCandidates(cands, p)

	assert.Equal(t, []string{"a", "c", "d"}, uidsOf(got))
}

func TestFilterCandidates_OutputIsSubsequence(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cities := []string{"Orsay", "Paris", "", "Lyon", " orsay "}

	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(30)
		cands := make([]domain.ScoredCandidate, n)
		for i := range cands {
			begin := testNow.Add(time.Duration(rng.Intn(96)-48) * time.Hour)
			cands[i] = candidate(string(rune('A'+i)), cities[rng.Intn(len(cities))], begin, rng.Float64()*1.6)
		}
		p := FilterParams{
			AllowedCities: []string{"Orsay", "Paris"},
			FutureOnly:    rng.Intn(2) == 0,
			MaxDistance:   1.0,
			KFinal:        1 + rng.Intn(6),
			Now:           testNow,
		}

		got := FilterCandidates(cands, p)

		require.LessOrEqual(t, len(got), p.KFinal)
		j := 0
		for _, g := range got {
			for j < len(cands) && cands[j].Document.Metadata.UID != g.Document.Metadata.UID {
				j++
			}
			require.Less(t, j, len(cands), "output is not a subsequence of input")
			j++
		}
	}
}

func TestFilterCandidates_BlankCityRejectedUnderWhitelist(t *testing.T) {
	cands := []domain.ScoredCandidate{
		upcoming("blank", "", 0.0),
		upcoming("spaces", "   ", 0.0),
		upcoming("ok", "Orsay", 0.9),
	}
	p := defaultParams()
	p.AllowedCities = []string{"Orsay"}
	p.FutureOnly = false

	got := FilterCandidates(cands, p)

	assert.Equal(t, []string{"ok"}, uidsOf(got))
}

func TestFilterCandidates_NoWhitelistAdmitsBlankCity(t *testing.T) {
	got := FilterCandidates([]domain.ScoredCandidate{upcoming("blank", "", 0.1)}, defaultParams())
	assert.Len(t, got, 1)
}

func TestFilterCandidates_CityMatchIsExactAfterTrim(t *testing.T) {
	p := defaultParams()
	p.AllowedCities = []string{"Paris", "Évry"}

	got := FilterCandidates([]domain.ScoredCandidate{
		upcoming("upper", "PARIS", 0.1),
		upcoming("lower", " paris ", 0.2),
		upcoming("padded", "  Paris ", 0.3),
		upcoming("accent", "Évry", 0.4),
		upcoming("unaccented", "Evry", 0.5),
	}, p)

	assert.Equal(t, []string{"padded", "accent"}, uidsOf(got))
}

func TestFilterCandidates_Freshness(t *testing.T) {
	oneSecondAgo := testNow.Add(-time.Second)
	unparseable := upcoming("garbage", "Orsay", 0.1)
	unparseable.Document.Metadata.FirstBeginDT = "bientôt"
	missing := upcoming("missing", "Orsay", 0.1)
	missing.Document.Metadata.FirstBeginDT = ""

	cands := []domain.ScoredCandidate{
		candidate("past", "Orsay", oneSecondAgo, 0.1),
		candidate("now", "Orsay", testNow, 0.1),
		upcoming("future", "Orsay", 0.1),
		unparseable,
		missing,
	}

	t.Run("future only", func(t *testing.T) {
		got := FilterCandidates(cands, defaultParams())
		assert.Equal(t, []string{"now", "future"}, uidsOf(got))
	})

	t.Run("any date", func(t *testing.T) {
		p := defaultParams()
		p.FutureOnly = false
		got := FilterCandidates(cands, p)
		assert.Equal(t, []string{"past", "now", "future", "garbage", "missing"}, uidsOf(got))
	})
}

func TestFilterCandidates_OneSecondInThePast(t *testing.T) {
	begin := time.Date(2026, 3, 1, 11, 59, 59, 0, time.UTC)
	p := defaultParams()
	p.Now = begin.Add(time.Second)

	got := FilterCandidates([]domain.ScoredCandidate{candidate("late", "Paris", begin, 0.1)}, p)

	assert.Empty(t, got)
}

func TestFilterCandidates_Distance(t *testing.T) {
	cands := []domain.ScoredCandidate{
		upcoming("at-bound", "Orsay", 1.0),
		upcoming("above", "Orsay", 1.0001),
		upcoming("missing", "Orsay", domain.MissingDistance()),
		upcoming("close", "Orsay", 0.1),
	}

	got := FilterCandidates(cands, defaultParams())

	assert.Equal(t, []string{"at-bound", "close"}, uidsOf(got))
}

func TestFilterCandidates_CapShortCircuits(t *testing.T) {
	cands := make([]domain.ScoredCandidate, 0, 10)
	for i := 0; i < 10; i++ {
		cands = append(cands, upcoming(string(rune('a'+i)), "Paris", 0.1*float64(i)))
	}
	p := defaultParams()
	p.KFinal = 3

	got := FilterCandidates(cands, p)

	assert.Equal(t, []string{"a", "b", "c"}, uidsOf(got))
}

func TestFilterCandidates_ZeroCap(t *testing.T) {
	p := defaultParams()
	p.KFinal = 0
	got := FilterCandidates([]domain.ScoredCandidate{upcoming("a", "Paris", 0.1)}, p)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterCandidates_EmptyInput(t *testing.T) {
	got := FilterCandidates(nil, defaultParams())
	assert.Empty(t, got)
}

func TestFilterCandidates_RelaxedNeverKeepsFewer(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		cands := make([]domain.ScoredCandidate, 30)
		for i := range cands {
			cands[i] = upcoming(string(rune('A'+i)), "Paris", rng.Float64()*2)
		}
		strict := defaultParams()
		relaxed := strict
		relaxed.MaxDistance += 0.2

		assert.GreaterOrEqual(t, len(FilterCandidates(cands, relaxed)), len(FilterCandidates(cands, strict)))
	}
}
