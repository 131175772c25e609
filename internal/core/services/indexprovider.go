package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

// IndexProvider owns the process-wide index handle.
// The handle is loaded lazily on first Get and shared by concurrent
// readers. Reload and Invalidate swap it atomically, so in-flight
// queries keep the handle they started with.
type IndexProvider struct {
	loader  driven.IndexLoader
	current atomic.Pointer[indexHandle]

	// mu serialises loads so concurrent first requests load once.
	mu         sync.Mutex
	generation atomic.Uint64
}

type indexHandle struct {
	index    driven.EventIndex
	loadedAt time.Time
}

// NewIndexProvider creates a provider backed by loader.
func NewIndexProvider(loader driven.IndexLoader) *IndexProvider {
	return &IndexProvider{loader: loader}
}

// Get returns the cached index, loading it if needed.
// Load failures match domain.ErrIndexUnavailable.
func (p *IndexProvider) Get(ctx context.Context) (driven.EventIndex, error) {
	if h := p.current.Load(); h != nil {
		return h.index, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if h := p.current.Load(); h != nil {
		return h.index, nil
	}

	gen := p.generation.Load()
	idx, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	// An Invalidate during the load means the artifact may have changed
	// under us: serve this handle once but do not cache it.
	if p.generation.Load() == gen {
		p.current.Store(&indexHandle{index: idx, loadedAt: time.Now()})
	}
	return idx, nil
}

// Reload loads a fresh handle and swaps it in.
// On failure the cached handle is dropped so the next Get retries.
func (p *IndexProvider) Reload(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation.Add(1)
	idx, err := p.load(ctx)
	if err != nil {
		p.current.Store(nil)
		return err
	}
	p.current.Store(&indexHandle{index: idx, loadedAt: time.Now()})
	logger.Debug("index handle reloaded")
	return nil
}

// Invalidate drops the cached handle. The next Get reloads.
func (p *IndexProvider) Invalidate() {
	p.generation.Add(1)
	p.current.Store(nil)
	logger.Debug("index handle invalidated")
}

// LoadedAt returns when the cached handle was loaded, if any.
func (p *IndexProvider) LoadedAt() (time.Time, bool) {
	h := p.current.Load()
	if h == nil {
		return time.Time{}, false
	}
	return h.loadedAt, true
}

func (p *IndexProvider) load(ctx context.Context) (driven.EventIndex, error) {
	if p.loader == nil {
		return nil, fmt.Errorf("%w: no index loader configured", domain.ErrIndexUnavailable)
	}
	idx, err := p.loader.Load(ctx)
	if err != nil {
		return nil, asIndexUnavailable(err)
	}
	return idx, nil
}

// asIndexUnavailable tags err as an index failure unless it is a
// cancellation or already tagged.
func asIndexUnavailable(err error) error {
	if errors.Is(err, domain.ErrIndexUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
}
