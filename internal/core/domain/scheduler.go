package domain

import "time"

// Task IDs for built-in tasks.
const (
	// TaskIDEventRefresh fetches fresh events and rebuilds the index.
	TaskIDEventRefresh = "event-refresh"
)

// DefaultRefreshInterval is how often events are refreshed when scheduling is on.
const DefaultRefreshInterval = 24 * time.Hour

// ScheduledTask represents a recurring background task.
type ScheduledTask struct {
	ID       string
	Name     string
	Interval time.Duration

	LastRun time.Time
	NextRun time.Time

	// LastError contains the last error message, if any.
	LastError   string
	LastSuccess time.Time

	Enabled bool
}

// Due reports whether the task should run at now.
func (t ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && !t.NextRun.After(now)
}

// TaskResult represents the outcome of a task execution.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string

	// ItemsProcessed counts events kept by the refresh.
	ItemsProcessed int
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// RunOnStart runs every enabled task once when the scheduler starts.
	RunOnStart bool

	// TaskConfigs holds per-task configuration.
	TaskConfigs map[string]TaskConfig
}

// TaskConfig holds configuration for a single task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// GetTaskConfig returns the configuration for a specific task.
// Returns a zero TaskConfig if the task is not configured.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	if c.TaskConfigs == nil {
		return TaskConfig{}
	}
	return c.TaskConfigs[taskID]
}

// ScheduleSettings configures the background event refresh.
type ScheduleSettings struct {
	Enabled         bool
	RefreshInterval time.Duration
	RunOnStart      bool
}

// SchedulerConfig converts settings to a scheduler configuration.
func (s ScheduleSettings) SchedulerConfig() SchedulerConfig {
	interval := s.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return SchedulerConfig{
		Enabled:    s.Enabled,
		RunOnStart: s.RunOnStart,
		TaskConfigs: map[string]TaskConfig{
			TaskIDEventRefresh: {Enabled: s.Enabled, Interval: interval},
		},
	}
}

// DefaultSchedulerConfig returns the scheduler defaults: off, daily refresh.
func DefaultSchedulerConfig() SchedulerConfig {
	return ScheduleSettings{RefreshInterval: DefaultRefreshInterval}.SchedulerConfig()
}
