package domain

import "time"

// IngestReport summarises an ingestion run.
type IngestReport struct {
	Source    string        `json:"source"`
	Fetched   int           `json:"fetched"`
	Kept      int           `json:"kept"`
	PastYear  int           `json:"past_year"`
	Upcoming  int           `json:"upcoming"`
	Dropped   int           `json:"dropped"`
	RawPath   string        `json:"raw_path,omitempty"`
	CleanPath string        `json:"clean_path,omitempty"`
	Duration  time.Duration `json:"-"`
}
