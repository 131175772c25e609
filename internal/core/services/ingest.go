package services

import (
	"context"
	"fmt"
	"time"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driving"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService pulls events from the agenda and writes cleaned records.
type IngestService struct {
	source     driven.EventSource
	normaliser driven.EventNormaliser
	files      driven.EventFileStore
	now        func() time.Time
}

// NewIngestService creates an ingestion service.
func NewIngestService(source driven.EventSource, normaliser driven.EventNormaliser, files driven.EventFileStore) *IngestService {
	return &IngestService{
		source:     source,
		normaliser: normaliser,
		files:      files,
		now:        time.Now,
	}
}

// Ingest fetches, persists, cleans and persists again.
func (s *IngestService) Ingest(ctx context.Context, rawPath, cleanPath string) (*domain.IngestReport, error) {
	logger.Section("Ingest")
	start := time.Now()

	raw, err := s.source.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", s.source.Name(), err)
	}
	logger.Info("Fetched %d raw events from %s", len(raw), s.source.Name())

	if rawPath != "" {
		if err := s.files.WriteRaw(rawPath, raw); err != nil {
			return nil, fmt.Errorf("ingest: write raw: %w", err)
		}
	}

	records, stats := s.normaliser.Normalise(raw, s.now().UTC())
	if cleanPath != "" {
		if err := s.files.WriteRecords(cleanPath, records); err != nil {
			return nil, fmt.Errorf("ingest: write records: %w", err)
		}
	}

	return &domain.IngestReport{
		Source:    s.source.Name(),
		Fetched:   len(raw),
		Kept:      len(records),
		PastYear:  stats.PastYear,
		Upcoming:  stats.Upcoming,
		Dropped:   stats.Raw - stats.Kept,
		RawPath:   rawPath,
		CleanPath: cleanPath,
		Duration:  time.Since(start),
	}, nil
}
