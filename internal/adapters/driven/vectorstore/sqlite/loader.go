package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/vectorstore"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/vectorstore/flat"
	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.IndexLoader = (*Loader)(nil)

// Loader opens the artifact into an in-memory EventIndex.
type Loader struct {
	path     string
	embedder driven.EmbeddingService
}

// NewLoader creates a loader for the artifact at path. Questions are
// embedded with embedder, which must be the model the artifact was built with.
func NewLoader(path string, embedder driven.EmbeddingService) *Loader {
	return &Loader{path: path, embedder: embedder}
}

// Path returns the artifact path.
func (l *Loader) Path() string {
	return l.path
}

// Load reads the whole artifact. Every failure wraps domain.ErrIndexUnavailable.
func (l *Loader) Load(ctx context.Context) (driven.EventIndex, error) {
	if l.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrIndexUnavailable)
	}

	db, err := openReadOnly(l.path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	info, err := readMeta(ctx, db, l.path)
	if err != nil {
		return nil, err
	}
	if info.Model != l.embedder.ModelName() {
		return nil, fmt.Errorf("%w: index built with %q but embedding model is %q; rebuild the index",
			domain.ErrIndexUnavailable, info.Model, l.embedder.ModelName())
	}

	var rows []chunkRow
	if err := db.SelectContext(ctx, &rows, `
		SELECT id, position, content, metadata, embedding
		FROM chunks ORDER BY position
	`); err != nil {
		return nil, fmt.Errorf("%w: read chunks: %w", domain.ErrIndexUnavailable, err)
	}

	vectors, err := flat.New(info.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	docs := make(map[string]domain.EventDocument, len(rows))

	for _, r := range rows {
		var md domain.EventMetadata
		if err := json.Unmarshal([]byte(r.Metadata), &md); err != nil {
			return nil, fmt.Errorf("%w: chunk %s metadata: %w", domain.ErrIndexUnavailable, r.ID, err)
		}
		if err := vectors.Add(r.ID, bytesToFloat32Slice(r.Embedding)); err != nil {
			return nil, fmt.Errorf("%w: chunk %s: %w", domain.ErrIndexUnavailable, r.ID, err)
		}
		docs[r.ID] = domain.EventDocument{Content: r.Content, Metadata: md}
	}

	logger.Debug("Loaded index %s: %d chunks, model %s, %d dims", l.path, len(rows), info.Model, info.Dimensions)
	return vectorstore.NewEventIndex(l.embedder, vectors, docs), nil
}
