// Package local rebuilds the index in-process.
//
// A build reads the cleaned events file (or a raw OpenAgenda export),
// chunks every event, embeds the chunks in batches and writes a new
// artifact next to the live one before renaming it into place.
package local

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/storage/jsonl"
	vsqlite "github.com/perachon/p7-puls-events-rag/internal/adapters/driven/vectorstore/sqlite"
	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
	"github.com/perachon/p7-puls-events-rag/internal/normalisers/openagenda"
	"github.com/perachon/p7-puls-events-rag/internal/postprocessors"
)

// Ensure Builder implements the interface.
var _ driven.IndexBuilder = (*Builder)(nil)

// DefaultBatchSize is the number of chunks embedded per request.
const DefaultBatchSize = 32

// Config locates the build input and output.
type Config struct {
	// Input is a cleaned JSONL file, or raw JSON to be cleaned first.
	Input string

	// ArtifactPath is the index file to replace.
	ArtifactPath string

	BatchSize int
}

// Builder performs the local ETL.
type Builder struct {
	cfg        Config
	embedder   driven.EmbeddingService
	pipeline   *postprocessors.Pipeline
	normaliser driven.EventNormaliser
	files      *jsonl.Store
	now        func() time.Time
}

// New creates a local builder.
func New(cfg Config, embedder driven.EmbeddingService, pipeline *postprocessors.Pipeline, normaliser driven.EventNormaliser) *Builder {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Builder{
		cfg:        cfg,
		embedder:   embedder,
		pipeline:   pipeline,
		normaliser: normaliser,
		files:      jsonl.NewStore(),
		now:        time.Now,
	}
}

// Build replaces the artifact. On error the previous artifact is untouched.
func (b *Builder) Build(ctx context.Context) (domain.RebuildDetails, error) {
	details := domain.RebuildDetails{Artifact: b.cfg.ArtifactPath}
	if b.embedder == nil {
		return details, errors.New("local builder: no embedding service configured")
	}
	if b.pipeline == nil {
		return details, errors.New("local builder: no document pipeline configured")
	}

	records, err := b.loadRecords()
	if err != nil {
		return details, err
	}
	details.Events = len(records)
	if len(records) == 0 {
		return details, fmt.Errorf("local builder: no events in %s", b.cfg.Input)
	}
	logger.Info("Loaded %d events from %s", len(records), b.cfg.Input)

	docs, err := b.pipeline.ProcessAll(ctx, records)
	if err != nil {
		return details, fmt.Errorf("local builder: %w", err)
	}
	details.Documents = len(docs)
	if len(docs) == 0 {
		return details, errors.New("local builder: events produced no documents")
	}

	chunks, err := b.embed(ctx, docs)
	if err != nil {
		return details, err
	}

	info, err := vsqlite.Write(ctx, b.cfg.ArtifactPath, b.embedder.ModelName(), chunks)
	if err != nil {
		return details, err
	}
	details.Stdout = fmt.Sprintf("Events: %d\nChunks/Documents: %d\nModel: %s (%d dims)\n",
		details.Events, details.Documents, info.Model, info.Dimensions)
	return details, nil
}

// loadRecords reads cleaned records, or cleans a raw export. Duplicate
// uids keep their first record and empty documents are rendered.
func (b *Builder) loadRecords() ([]domain.EventRecord, error) {
	var records []domain.EventRecord
	if jsonl.IsJSONL(b.cfg.Input) {
		var err error
		if records, err = b.files.ReadRecords(b.cfg.Input); err != nil {
			return nil, fmt.Errorf("local builder: %w", err)
		}
	} else {
		if b.normaliser == nil {
			return nil, fmt.Errorf("local builder: %s is not JSONL and no normaliser is configured", b.cfg.Input)
		}
		raw, err := b.files.ReadRaw(b.cfg.Input)
		if err != nil {
			return nil, fmt.Errorf("local builder: %w", err)
		}
		records, _ = b.normaliser.Normalise(raw, b.now().UTC())
	}

	seen := make(map[string]struct{}, len(records))
	out := records[:0]
	for _, rec := range records {
		if _, dup := seen[rec.UID]; dup {
			continue
		}
		seen[rec.UID] = struct{}{}
		if rec.Document == "" {
			rec.Document = openagenda.DocumentText(rec)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (b *Builder) embed(ctx context.Context, docs []domain.EventDocument) ([]vsqlite.Chunk, error) {
	chunks := make([]vsqlite.Chunk, 0, len(docs))
	for start := 0; start < len(docs); start += b.cfg.BatchSize {
		end := min(start+b.cfg.BatchSize, len(docs))

		texts := make([]string, end-start)
		for i, d := range docs[start:end] {
			texts[i] = d.Content
		}

		vectors, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("local builder: embed chunks %d-%d: %w", start, end, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("local builder: %w: got %d embeddings for %d chunks",
				domain.ErrEmbeddingUnavailable, len(vectors), len(texts))
		}

		for i, d := range docs[start:end] {
			chunks = append(chunks, vsqlite.Chunk{
				ID:        fmt.Sprintf("%s#%d", d.Metadata.UID, d.Metadata.ChunkID),
				Document:  d,
				Embedding: vectors[i],
			})
		}
		logger.Debug("Embedded %d/%d chunks", end, len(docs))
	}
	return chunks, nil
}
