package driven

import "context"

// ArtifactWatcher reports changes to the index artifact on disk.
type ArtifactWatcher interface {
	// Run calls onChange after the artifact is created, replaced or
	// removed. It blocks until ctx is done.
	Run(ctx context.Context, onChange func()) error

	// Close releases the underlying watch.
	Close() error
}
