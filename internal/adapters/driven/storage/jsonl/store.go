// Package jsonl persists ingestion outputs as files.
//
// Raw upstream events are stored as a single JSON document
// ({"events": [...]}); cleaned records as one JSON object per line.
// Every write goes to a temporary file that is renamed into place.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.EventFileStore = (*Store)(nil)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 16 << 20

// Store reads and writes event files.
type Store struct{}

// NewStore creates a file store.
func NewStore() *Store {
	return &Store{}
}

type rawDocument struct {
	Events []json.RawMessage `json:"events"`
}

// WriteRaw stores raw upstream events as {"events": [...]}.
func (s *Store) WriteRaw(path string, events []json.RawMessage) error {
	if events == nil {
		events = []json.RawMessage{}
	}
	return writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(rawDocument{Events: events})
	})
}

// WriteRecords stores cleaned records as JSON lines.
func (s *Store) WriteRecords(path string, records []domain.EventRecord) error {
	return writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for i := range records {
			if err := enc.Encode(records[i]); err != nil {
				return fmt.Errorf("record %s: %w", records[i].UID, err)
			}
		}
		return nil
	})
}

// ReadRaw loads raw events from either {"events": [...]}, {"data": [...]}
// or a bare JSON array.
func (s *Store) ReadRaw(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return DecodeRaw(data)
}

// DecodeRaw parses a raw events document.
func DecodeRaw(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var events []json.RawMessage
		if err := json.Unmarshal(data, &events); err != nil {
			return nil, fmt.Errorf("decoding raw events: %w", err)
		}
		return events, nil
	}

	var doc struct {
		Events []json.RawMessage `json:"events"`
		Data   []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding raw events: %w", err)
	}
	if doc.Events != nil {
		return doc.Events, nil
	}
	return doc.Data, nil
}

// ReadRecords loads cleaned records from a JSONL file. Blank lines are skipped.
func (s *Store) ReadRecords(path string) ([]domain.EventRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	var records []domain.EventRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec domain.EventRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, nil
}

// IsJSONL reports whether path names a JSON lines file.
func IsJSONL(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".jsonl" || ext == ".ndjson"
}

func writeAtomic(path string, write func(io.Writer) error) (err error) {
	if path == "" {
		return errors.New("jsonl: path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp := path + ".tmp-" + uuid.NewString()
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	w := bufio.NewWriter(f)
	if err = write(w); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
