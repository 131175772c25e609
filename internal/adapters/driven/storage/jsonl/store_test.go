package jsonl

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

func TestStore_RawRoundtrip(t *testing.T) {
	s := NewStore()
	path := filepath.Join(t.TempDir(), "raw", "events.json")

	events := []json.RawMessage{
		json.RawMessage(`{"uid":1,"title":{"fr":"Concert"}}`),
		json.RawMessage(`{"uid":2}`),
	}
	require.NoError(t, s.WriteRaw(path, events))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"events"`)

	got, err := s.ReadRaw(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.JSONEq(t, `{"uid":1,"title":{"fr":"Concert"}}`, string(got[0]))
}

func TestStore_WriteRawEmpty(t *testing.T) {
	s := NewStore()
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, s.WriteRaw(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"events": []}`, string(data))
}

func TestDecodeRaw_Shapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"events key", `{"events":[{"uid":1}]}`, 1},
		{"data key", `{"data":[{"uid":1},{"uid":2}]}`, 2},
		{"bare array", ` [{"uid":1},{"uid":2},{"uid":3}]`, 3},
		{"neither", `{"total":0}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRaw([]byte(tt.in))
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	_, err := DecodeRaw([]byte(`{not json`))
	assert.Error(t, err)
}

func TestStore_RecordsRoundtrip(t *testing.T) {
	s := NewStore()
	path := filepath.Join(t.TempDir(), "events_index_ready.jsonl")

	lat := 48.7
	records := []domain.EventRecord{
		{
			UID:          "100",
			Title:        "Concert <jazz> & blues",
			Description:  "Une soirée jazz à Orsay",
			FirstBegin:   time.Date(2026, 11, 2, 19, 0, 0, 0, time.UTC),
			LocationCity: "Orsay",
			LocationLat:  &lat,
			Keywords:     []string{"jazz"},
			Document:     "Titre: Concert",
		},
		{UID: "101", Title: "Atelier", FirstBegin: time.Date(2026, 11, 3, 10, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, s.WriteRecords(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<jazz> & blues", "HTML must not be escaped")

	got, err := s.ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "100", got[0].UID)
	assert.True(t, records[0].FirstBegin.Equal(got[0].FirstBegin))
	require.NotNil(t, got[0].LocationLat)
	assert.InDelta(t, 48.7, *got[0].LocationLat, 1e-9)
	assert.Equal(t, []string{"jazz"}, got[0].Keywords)
	assert.Equal(t, "101", got[1].UID)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestStore_ReadRecordsSkipsBlankLinesAndReportsLine(t *testing.T) {
	s := NewStore()
	dir := t.TempDir()

	ok := filepath.Join(dir, "ok.jsonl")
	require.NoError(t, os.WriteFile(ok, []byte("\n{\"uid\":\"1\",\"first_begin_dt\":\"2026-01-01T00:00:00Z\"}\n\n"), 0o644))
	got, err := s.ReadRecords(ok)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	bad := filepath.Join(dir, "bad.jsonl")
	require.NoError(t, os.WriteFile(bad, []byte("{\"uid\":\"1\",\"first_begin_dt\":\"2026-01-01T00:00:00Z\"}\n{oops\n"), 0o644))
	_, err = s.ReadRecords(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":2:")

	_, err = s.ReadRecords(filepath.Join(dir, "missing.jsonl"))
	assert.Error(t, err)
}

func TestIsJSONL(t *testing.T) {
	assert.True(t, IsJSONL("a/b.jsonl"))
	assert.True(t, IsJSONL("a/b.NDJSON"))
	assert.False(t, IsJSONL("a/b.json"))
}
