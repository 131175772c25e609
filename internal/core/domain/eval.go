package domain

// EvalCase is one row of a gold question set.
type EvalCase struct {
	ID            string   `json:"id" yaml:"id"`
	Question      string   `json:"question" yaml:"question"`
	ExpectedUIDs  []string `json:"expected_uids" yaml:"expected_uids"`
	AllowedCities []string `json:"allowed_cities,omitempty" yaml:"allowed_cities,omitempty"`
	FutureOnly    *bool    `json:"future_only,omitempty" yaml:"future_only,omitempty"`
}

// EvalVerdict grades one case.
type EvalVerdict string

// Available evaluation verdicts.
const (
	EvalCorrect   EvalVerdict = "correct"
	EvalPartial   EvalVerdict = "partial"
	EvalIncorrect EvalVerdict = "incorrect"
)

// EvalScore is the set comparison of expected and predicted uids.
type EvalScore struct {
	ExactMatch bool        `json:"exact_match"`
	Precision  float64     `json:"precision"`
	Recall     float64     `json:"recall"`
	F1         float64     `json:"f1"`
	Verdict    EvalVerdict `json:"verdict"`
}

// EvalRow is the outcome of one case.
type EvalRow struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	ExpectedUIDs  []string `json:"expected_uids"`
	PredictedUIDs []string `json:"predicted_uids"`
	EvalScore
	Answer string `json:"answer"`
	Error  string `json:"error,omitempty"`
}

// EvalSummary aggregates a run.
type EvalSummary struct {
	N               int                 `json:"n"`
	AccuracyCorrect float64             `json:"accuracy_correct"`
	RatePartial     float64             `json:"rate_partial"`
	RateIncorrect   float64             `json:"rate_incorrect"`
	Counts          map[EvalVerdict]int `json:"counts"`
}

// EvalReport is a complete evaluation run.
type EvalReport struct {
	Summary EvalSummary `json:"summary"`
	Results []EvalRow   `json:"results"`
}
