package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driving"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

// Ensure RebuildService implements the interface.
var _ driving.RebuildService = (*RebuildService)(nil)

// IndexReloader swaps the serving index after a rebuild.
// *IndexProvider is the production implementation.
type IndexReloader interface {
	Reload(ctx context.Context) error
}

// RebuildService runs index rebuilds one at a time.
type RebuildService struct {
	builder  driven.IndexBuilder
	reloader IndexReloader
	history  driven.RebuildLogStore
	running  atomic.Bool
}

// NewRebuildService creates a rebuild service. history may be nil.
func NewRebuildService(builder driven.IndexBuilder, reloader IndexReloader, history driven.RebuildLogStore) *RebuildService {
	return &RebuildService{
		builder:  builder,
		reloader: reloader,
		history:  history,
	}
}

// Rebuild replaces the index artifact and reloads the serving handle.
// The build runs to completion even if ctx is cancelled.
func (s *RebuildService) Rebuild(ctx context.Context) (*domain.RebuildResult, error) {
	if s.builder == nil {
		return nil, fmt.Errorf("rebuild: %w: no builder configured", domain.ErrNotImplemented)
	}
	if !s.running.CompareAndSwap(false, true) {
		return nil, domain.ErrRebuildInProgress
	}
	defer s.running.Store(false)

	ctx = context.WithoutCancel(ctx)
	logger.Section("Rebuild")

	start := time.Now()
	res := &domain.RebuildResult{ID: uuid.NewString(), StartedAt: start.UTC()}

	details, err := s.builder.Build(ctx)
	res.Details = details
	if err != nil {
		return s.fail(ctx, res, start, "Vectorstore rebuild failed", err)
	}

	if s.reloader != nil {
		if err := s.reloader.Reload(ctx); err != nil {
			return s.fail(ctx, res, start, "Vectorstore rebuilt but could not be loaded", err)
		}
	}

	res.Status = domain.RebuildStatusOK
	res.Message = "Vectorstore rebuilt successfully"
	res.Duration = time.Since(start)
	s.record(ctx, *res)

	logger.WithFields(map[string]any{
		"rebuild_id": res.ID,
		"documents":  res.Details.Documents,
		"duration":   res.Duration,
	}).Info("rebuild complete")
	return res, nil
}

func (s *RebuildService) fail(
	ctx context.Context,
	res *domain.RebuildResult,
	start time.Time,
	msg string,
	err error,
) (*domain.RebuildResult, error) {
	res.Status = domain.RebuildStatusError
	res.Message = msg
	res.Duration = time.Since(start)
	res.Details.Error = err.Error()
	s.record(ctx, *res)

	logger.Error("rebuild %s: %v", res.ID, err)
	return res, fmt.Errorf("%w: %w", domain.ErrRebuildFailed, err)
}

func (s *RebuildService) record(ctx context.Context, res domain.RebuildResult) {
	if s.history == nil {
		return
	}
	if err := s.history.RecordRebuild(ctx, res); err != nil {
		logger.Warn("record rebuild %s: %v", res.ID, err)
	}
}
