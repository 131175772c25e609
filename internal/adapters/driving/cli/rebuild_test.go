package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

func TestRebuild_Success(t *testing.T) {
	rebuilds := &mockRebuildService{result: &domain.RebuildResult{
		Status:   domain.RebuildStatusOK,
		Message:  "Vectorstore rebuilt successfully",
		Duration: 1500 * time.Millisecond,
		Details:  domain.RebuildDetails{Events: 12, Documents: 30, Artifact: "/tmp/index.db"},
	}}
	withServices(t, &Services{Rebuild: rebuilds})

	out, err := executeCommand(t, "rebuild")

	require.NoError(t, err)
	assert.Contains(t, out, "Vectorstore rebuilt successfully (1.5s)")
	assert.Contains(t, out, "Events: 12, chunks: 30")
	assert.Contains(t, out, "/tmp/index.db")
	assert.Equal(t, 1, rebuilds.calls)
}

func TestRebuild_FailurePrintsDiagnostics(t *testing.T) {
	code := 2
	withServices(t, &Services{Rebuild: &mockRebuildService{
		result: &domain.RebuildResult{
			Status:  domain.RebuildStatusError,
			Message: "Vectorstore rebuild failed",
			Details: domain.RebuildDetails{ReturnCode: &code, Stderr: "boom"},
		},
		err: domain.ErrRebuildFailed,
	}})

	out, err := executeCommand(t, "rebuild")

	assert.ErrorIs(t, err, domain.ErrRebuildFailed)
	assert.Contains(t, out, "Exit code: 2")
	assert.Contains(t, out, "boom")
}

func TestRebuild_JSON(t *testing.T) {
	withServices(t, &Services{Rebuild: &mockRebuildService{result: &domain.RebuildResult{
		Status:   domain.RebuildStatusOK,
		Message:  "Vectorstore rebuilt successfully",
		Duration: 2 * time.Second,
	}}})

	out, err := executeCommand(t, "rebuild", "--json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "ok", got["status"])
	assert.InDelta(t, 2.0, got["duration_s"], 1e-9)
}

func TestRebuild_InProgress(t *testing.T) {
	withServices(t, &Services{Rebuild: &mockRebuildService{err: domain.ErrRebuildInProgress}})

	_, err := executeCommand(t, "rebuild")

	assert.ErrorIs(t, err, domain.ErrRebuildInProgress)
}

func TestRebuild_NotConfigured(t *testing.T) {
	withServices(t, &Services{})

	_, err := executeCommand(t, "rebuild")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rebuild service not configured")
}
