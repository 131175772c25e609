// Package watcher notices when the index artifact changes on disk.
//
// The parent directory is watched rather than the file itself, since a
// rebuild replaces the artifact by renaming a new file over it. Bursts
// of events are coalesced into a single notification.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.ArtifactWatcher = (*Watcher)(nil)

// DefaultDebounce is the quiet period before onChange fires.
const DefaultDebounce = 250 * time.Millisecond

// Watcher watches one artifact path.
type Watcher struct {
	path     string
	debounce time.Duration
	fsw      *fsnotify.Watcher

	closeOnce sync.Once
}

// New starts watching the directory containing path. The directory must exist.
func New(path string, debounce time.Duration) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("watcher: path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watcher: watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{path: abs, debounce: debounce, fsw: fsw}, nil
}

// Run delivers coalesced change notifications until ctx is done or the
// watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			logger.Debug("Index artifact event: %s", ev)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("index watcher: %v", err)

		case <-fire:
			fire = nil
			onChange()
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsw.Close()
	})
	return err
}
