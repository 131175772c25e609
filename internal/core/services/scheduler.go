package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driving"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

const (
	defaultCheckInterval = time.Minute
	maxTaskResults       = 100
)

// RefreshPaths are the files written by the scheduled event refresh.
type RefreshPaths struct {
	Raw   string
	Clean string
}

// SchedulerOption customises a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerClock overrides the time source.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

// WithCheckInterval sets how often due tasks are looked for.
func WithCheckInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.checkEvery = d
		}
	}
}

// Scheduler runs the event refresh in the background of long-lived
// commands. Task state lives in memory; the rebuild history records
// the outcome of each refresh.
type Scheduler struct {
	config  domain.SchedulerConfig
	ingest  driving.IngestService
	rebuild driving.RebuildService
	paths   RefreshPaths

	now        func() time.Time
	checkEvery time.Duration

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
	tasks    map[string]*domain.ScheduledTask
	inFlight map[string]bool
	results  []domain.TaskResult
}

// NewScheduler creates a scheduler. ingest and rebuild may be nil, in
// which case the refresh skips that step.
func NewScheduler(
	config domain.SchedulerConfig,
	ingest driving.IngestService,
	rebuild driving.RebuildService,
	paths RefreshPaths,
	opts ...SchedulerOption,
) *Scheduler {
	s := &Scheduler{
		config:     config,
		ingest:     ingest,
		rebuild:    rebuild,
		paths:      paths,
		now:        time.Now,
		checkEvery: defaultCheckInterval,
		tasks:      make(map[string]*domain.ScheduledTask),
		inFlight:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the scheduler loop. This method blocks until Stop is
// called or ctx is cancelled. A disabled scheduler returns at once.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.initialiseTasks()
	return s.run(ctx, stopCh)
}

// Stop gracefully shuts down the scheduler and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Tasks returns a snapshot of the scheduled tasks, ordered by ID.
func (s *Scheduler) Tasks() []domain.ScheduledTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ScheduledTask, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Results returns recent task results, oldest first.
func (s *Scheduler) Results() []domain.TaskResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.TaskResult(nil), s.results...)
}

func (s *Scheduler) initialiseTasks() {
	if cfg := s.config.GetTaskConfig(domain.TaskIDEventRefresh); cfg.Enabled {
		s.ensureTask(domain.TaskIDEventRefresh, "Event refresh", cfg)
	}
}

// ensureTask creates a task or applies a changed interval to it.
func (s *Scheduler) ensureTask(id, name string, cfg domain.TaskConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	task, ok := s.tasks[id]
	if !ok {
		next := now.Add(cfg.Interval)
		if s.config.RunOnStart {
			next = now
		}
		s.tasks[id] = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  next,
		}
		return
	}

	if task.Interval != cfg.Interval {
		task.Interval = cfg.Interval
		task.NextRun = now.Add(cfg.Interval)
	}
	task.Enabled = cfg.Enabled
}

func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.checkEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks starts every due task that is not already running.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	var due []string
	for id, task := range s.tasks {
		if task.Due(now) && !s.inFlight[id] {
			s.inFlight[id] = true
			due = append(due, id)
		}
	}
	s.mu.Unlock()

	for _, id := range due {
		s.runTask(ctx, id)
	}
}

func (s *Scheduler) runTask(ctx context.Context, id string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		result := domain.TaskResult{TaskID: id, StartedAt: s.now()}

		var err error
		switch id {
		case domain.TaskIDEventRefresh:
			result.ItemsProcessed, err = s.runEventRefresh(ctx)
		default:
			err = fmt.Errorf("unknown task %q", id)
		}
		result.EndedAt = s.now()
		result.Success = err == nil
		if err != nil {
			result.Error = err.Error()
			logger.Warn("scheduler: %s failed: %v", id, err)
		} else {
			logger.Info("scheduler: %s done, %d events", id, result.ItemsProcessed)
		}

		s.record(result)
	}()
}

// record updates the task state and keeps the last results.
func (s *Scheduler) record(result domain.TaskResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight, result.TaskID)
	if task, ok := s.tasks[result.TaskID]; ok {
		task.LastRun = result.StartedAt
		task.NextRun = result.EndedAt.Add(task.Interval)
		task.LastError = result.Error
		if result.Success {
			task.LastSuccess = result.EndedAt
		}
	}

	s.results = append(s.results, result)
	if len(s.results) > maxTaskResults {
		s.results = s.results[len(s.results)-maxTaskResults:]
	}
}

// runEventRefresh fetches events then rebuilds the index from them.
func (s *Scheduler) runEventRefresh(ctx context.Context) (int, error) {
	kept := 0
	if s.ingest != nil {
		report, err := s.ingest.Ingest(ctx, s.paths.Raw, s.paths.Clean)
		if err != nil {
			return 0, fmt.Errorf("ingest: %w", err)
		}
		kept = report.Kept
	}

	if s.rebuild == nil {
		return kept, nil
	}
	res, err := s.rebuild.Rebuild(ctx)
	switch {
	case errors.Is(err, domain.ErrRebuildInProgress):
		return kept, err
	case err != nil:
		if res != nil && res.Details.Error != "" {
			return kept, fmt.Errorf("rebuild: %w: %s", err, res.Details.Error)
		}
		return kept, fmt.Errorf("rebuild: %w", err)
	}
	return kept, nil
}
