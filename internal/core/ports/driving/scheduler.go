package driving

import (
	"context"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// Scheduler runs background tasks such as the periodic event refresh.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error

	// Tasks returns a snapshot of the scheduled tasks.
	Tasks() []domain.ScheduledTask
}
