package domain

import (
	"math"
	"time"
)

// OutputTailLimit caps captured process output in rebuild diagnostics.
const OutputTailLimit = 4000

// RebuildStatus is the outcome of a rebuild.
type RebuildStatus string

// Available rebuild statuses.
const (
	RebuildStatusOK    RebuildStatus = "ok"
	RebuildStatusError RebuildStatus = "error"
)

// RebuildDetails carries rebuild diagnostics.
type RebuildDetails struct {
	Stdout     string `json:"stdout,omitempty"`
	Stderr     string `json:"stderr,omitempty"`
	ReturnCode *int   `json:"returncode,omitempty"`
	Events     int    `json:"events,omitempty"`
	Documents  int    `json:"documents,omitempty"`
	Artifact   string `json:"artifact,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RebuildResult reports a rebuild attempt.
type RebuildResult struct {
	ID        string         `json:"id"`
	Status    RebuildStatus  `json:"status"`
	Message   string         `json:"message"`
	Duration  time.Duration  `json:"-"`
	Details   RebuildDetails `json:"details"`
	StartedAt time.Time      `json:"started_at"`
}

// OK reports whether the rebuild replaced the index.
func (r RebuildResult) OK() bool {
	return r.Status == RebuildStatusOK
}

// DurationSeconds returns the duration in seconds, rounded to milliseconds.
func (r RebuildResult) DurationSeconds() float64 {
	return math.Round(r.Duration.Seconds()*1000) / 1000
}

// Tail returns the last n bytes of s, aligned to a rune boundary.
func Tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	start := len(s) - n
	for start < len(s) && s[start]&0xC0 == 0x80 {
		start++
	}
	return s[start:]
}

// Head returns at most the first n bytes of s, cut on a rune boundary.
func Head(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	end := n
	for end > 0 && s[end]&0xC0 == 0x80 {
		end--
	}
	return s[:end]
}
