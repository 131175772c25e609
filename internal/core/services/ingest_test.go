package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

type stubSource struct {
	events []json.RawMessage
	err    error
}

func (s *stubSource) Name() string { return "puls-events" }

func (s *stubSource) FetchAll(context.Context) ([]json.RawMessage, error) {
	return s.events, s.err
}

type stubNormaliser struct {
	now time.Time
}

func (n *stubNormaliser) Normalise(raw []json.RawMessage, now time.Time) ([]domain.EventRecord, driven.NormaliseStats) {
	n.now = now
	records := []domain.EventRecord{{UID: "e1"}}
	return records, driven.NormaliseStats{Raw: len(raw), Kept: 1, Upcoming: 1}
}

type recordingFiles struct {
	raw     map[string]int
	records map[string]int
	err     error
}

func newRecordingFiles() *recordingFiles {
	return &recordingFiles{raw: map[string]int{}, records: map[string]int{}}
}

func (f *recordingFiles) WriteRaw(path string, events []json.RawMessage) error {
	if f.err != nil {
		return f.err
	}
	f.raw[path] = len(events)
	return nil
}

func (f *recordingFiles) WriteRecords(path string, records []domain.EventRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records[path] = len(records)
	return nil
}

func TestIngestService_Ingest(t *testing.T) {
	source := &stubSource{events: []json.RawMessage{
		json.RawMessage(`{"uid":1}`),
		json.RawMessage(`{"uid":2}`),
		json.RawMessage(`{"uid":3}`),
	}}
	normaliser := &stubNormaliser{}
	files := newRecordingFiles()
	svc := NewIngestService(source, normaliser, files)
	svc.now = fixedClock

	report, err := svc.Ingest(context.Background(), "raw.json", "clean.jsonl")

	require.NoError(t, err)
	assert.Equal(t, "puls-events", report.Source)
	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 1, report.Kept)
	assert.Equal(t, 2, report.Dropped)
	assert.Equal(t, 1, report.Upcoming)
	assert.Equal(t, 3, files.raw["raw.json"])
	assert.Equal(t, 1, files.records["clean.jsonl"])
	assert.Equal(t, testNow, normaliser.now)
}

func TestIngestService_SkipsEmptyPaths(t *testing.T) {
	files := newRecordingFiles()
	svc := NewIngestService(&stubSource{}, &stubNormaliser{}, files)

	_, err := svc.Ingest(context.Background(), "", "")

	require.NoError(t, err)
	assert.Empty(t, files.raw)
	assert.Empty(t, files.records)
}

func TestIngestService_Errors(t *testing.T) {
	t.Run("source", func(t *testing.T) {
		src := &stubSource{err: domain.ErrSourceUnavailable}
		_, err := NewIngestService(src, &stubNormaliser{}, newRecordingFiles()).Ingest(context.Background(), "a", "b")
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	})

	t.Run("write", func(t *testing.T) {
		files := newRecordingFiles()
		files.err = errors.New("disk full")
		_, err := NewIngestService(&stubSource{}, &stubNormaliser{}, files).Ingest(context.Background(), "a", "b")
		assert.ErrorContains(t, err, "disk full")
	})
}
