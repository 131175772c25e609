package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduledTask_Due(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		task ScheduledTask
		want bool
	}{
		{"disabled", ScheduledTask{NextRun: now.Add(-time.Hour)}, false},
		{"never scheduled", ScheduledTask{Enabled: true}, true},
		{"past", ScheduledTask{Enabled: true, NextRun: now.Add(-time.Minute)}, true},
		{"exactly now", ScheduledTask{Enabled: true, NextRun: now}, true},
		{"future", ScheduledTask{Enabled: true, NextRun: now.Add(time.Minute)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.Due(now))
		})
	}
}

func TestScheduleSettings_SchedulerConfig(t *testing.T) {
	cfg := ScheduleSettings{Enabled: true, RefreshInterval: 6 * time.Hour, RunOnStart: true}.SchedulerConfig()

	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.RunOnStart)
	assert.Equal(t, TaskConfig{Enabled: true, Interval: 6 * time.Hour}, cfg.GetTaskConfig(TaskIDEventRefresh))
}

func TestScheduleSettings_DefaultInterval(t *testing.T) {
	cfg := ScheduleSettings{Enabled: true}.SchedulerConfig()
	assert.Equal(t, DefaultRefreshInterval, cfg.GetTaskConfig(TaskIDEventRefresh).Interval)
}

func TestDefaultSchedulerConfig(t *testing.T) {
	cfg := DefaultSchedulerConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.GetTaskConfig(TaskIDEventRefresh).Enabled)
	assert.Equal(t, DefaultRefreshInterval, cfg.GetTaskConfig(TaskIDEventRefresh).Interval)
}

func TestSchedulerConfig_GetTaskConfig_Unknown(t *testing.T) {
	var cfg SchedulerConfig
	assert.Equal(t, TaskConfig{}, cfg.GetTaskConfig("nope"))
}
