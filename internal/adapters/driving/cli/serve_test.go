package cli

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

type fakeWatcher struct {
	onChange func()
	started  chan struct{}
}

func (w *fakeWatcher) Run(ctx context.Context, onChange func()) error {
	w.onChange = onChange
	close(w.started)
	<-ctx.Done()
	return ctx.Err()
}

func (w *fakeWatcher) Close() error { return nil }

type fakeScheduler struct {
	started atomic.Bool
	stopped atomic.Bool
}

func (s *fakeScheduler) Start(ctx context.Context) error {
	s.started.Store(true)
	<-ctx.Done()
	return ctx.Err()
}

func (s *fakeScheduler) Stop() error {
	s.stopped.Store(true)
	return nil
}

func (s *fakeScheduler) Tasks() []domain.ScheduledTask { return nil }

func TestStartWatcher_InvalidatesIndex(t *testing.T) {
	w := &fakeWatcher{started: make(chan struct{})}
	var invalidated atomic.Int32
	withServices(t, &Services{Watcher: w, Invalidate: func() { invalidated.Add(1) }})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startWatcher(ctx)

	select {
	case <-w.started:
	case <-time.After(time.Second):
		t.Fatal("watcher not started")
	}
	w.onChange()
	assert.EqualValues(t, 1, invalidated.Load())
}

func TestStartWatcher_NoWatcher(t *testing.T) {
	withServices(t, &Services{})
	startWatcher(context.Background())
}

func TestStartScheduler(t *testing.T) {
	s := &fakeScheduler{}
	withServices(t, &Services{Scheduler: s})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := startScheduler(ctx)

	require.Eventually(t, s.started.Load, time.Second, 5*time.Millisecond)
	stop()
	assert.True(t, s.stopped.Load())
}

func TestServe_NotConfigured(t *testing.T) {
	withServices(t, &Services{})

	_, err := executeCommand(t, "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "answer service not configured")
}
