package evalfile

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCases_JSONL(t *testing.T) {
	path := writeTemp(t, "gold.jsonl", `{"id": "q1", "question": "Concerts à Orsay ?", "expected_uids": ["e1", 42]}

{"question": "Rien ?", "expected_uids": [], "allowed_cities": ["Paris"], "future_only": false}
`)

	cases, err := LoadCases(path)
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.Equal(t, "q1", cases[0].ID)
	assert.Equal(t, []string{"e1", "42"}, cases[0].ExpectedUIDs)
	assert.Nil(t, cases[0].FutureOnly)

	assert.Equal(t, "q2", cases[1].ID, "missing ids are numbered")
	assert.Empty(t, cases[1].ExpectedUIDs)
	assert.Equal(t, []string{"Paris"}, cases[1].AllowedCities)
	require.NotNil(t, cases[1].FutureOnly)
	assert.False(t, *cases[1].FutureOnly)
}

func TestLoadCases_JSONLInvalidLine(t *testing.T) {
	path := writeTemp(t, "gold.jsonl", "{\"id\": \"q1\", \"question\": \"a\"}\n\n{broken\n")

	_, err := LoadCases(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestLoadCases_YAML(t *testing.T) {
	path := writeTemp(t, "gold.yaml", `
- id: 7
  question: Expositions à Sceaux ?
  expected_uids: [111, "abc"]
  allowed_cities: [Sceaux]
- question: Théâtre ?
  expected_uids: []
`)

	cases, err := LoadCases(path)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "7", cases[0].ID)
	assert.Equal(t, []string{"111", "abc"}, cases[0].ExpectedUIDs)
	assert.Equal(t, []string{"Sceaux"}, cases[0].AllowedCities)
	assert.Equal(t, "q2", cases[1].ID)
}

func TestLoadCases_YAMLCasesKey(t *testing.T) {
	path := writeTemp(t, "gold.yml", `
cases:
  - id: a
    question: q
    expected_uids: [e1]
`)

	cases, err := LoadCases(path)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "a", cases[0].ID)
}

func TestLoadCases_Empty(t *testing.T) {
	_, err := LoadCases(writeTemp(t, "gold.jsonl", "\n\n"))
	assert.ErrorIs(t, err, ErrEmptyGoldSet)
}

func TestLoadCases_Missing(t *testing.T) {
	_, err := LoadCases(filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.Error(t, err)
}

func testReport() *domain.EvalReport {
	return &domain.EvalReport{
		Summary: domain.EvalSummary{
			N:               1,
			AccuracyCorrect: 0,
			RatePartial:     1,
			Counts:          map[domain.EvalVerdict]int{domain.EvalPartial: 1},
		},
		Results: []domain.EvalRow{{
			ID:            "q1",
			Question:      "Concerts, jazz & blues ?",
			ExpectedUIDs:  []string{"e1", "e2"},
			PredictedUIDs: []string{"e1"},
			EvalScore: domain.EvalScore{
				Precision: 1,
				Recall:    0.5,
				F1:        0.6667,
				Verdict:   domain.EvalPartial,
			},
		}},
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "eval_report.json")
	require.NoError(t, WriteJSON(path, testReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "&", "HTML characters are not escaped")

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Contains(t, got, "summary")
	assert.Contains(t, got, "results")
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval_report.csv")
	require.NoError(t, WriteCSV(path, testReport()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{
		"q1", "partial", "false", "1.0000", "0.5000", "0.6667",
		"e1 e2", "e1", "Concerts, jazz & blues ?",
	}, records[1])
}
