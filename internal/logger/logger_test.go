package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetJSON(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	reset(t)

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := reset(t)
	SetVerbose(true)

	Debug("test message %s", "arg")

	assert.Equal(t, "[DEBUG] test message arg\n", buf.String())
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	buf := reset(t)
	SetVerbose(false)

	Debug("test message")
	Section("Section")

	assert.Empty(t, buf.String())
}

func TestInfoWarnError_WhenNotVerbose(t *testing.T) {
	buf := reset(t)
	SetVerbose(false)

	WithFields(map[string]any{"verdict": "ok"}).Info("ask")
	Warn("history database unavailable")
	Error("boom")

	assert.Equal(t, "[INFO] ask verdict=ok\n[WARN] history database unavailable\n[ERROR] boom\n", buf.String())
}

func TestSilence(t *testing.T) {
	buf := reset(t)

	restore := Silence()
	Error("hidden")
	restore()
	Info("shown")

	assert.Equal(t, "[INFO] shown\n", buf.String())
}

func TestInfoAndWarn_WhenVerbose(t *testing.T) {
	buf := reset(t)
	SetVerbose(true)

	Info("loaded %d docs", 3)
	Warn("slow")

	assert.Equal(t, "[INFO] loaded 3 docs\n[WARN] slow\n", buf.String())
}

func TestSection_WhenVerbose(t *testing.T) {
	buf := reset(t)
	SetVerbose(true)

	Section("Retrieval")

	assert.Equal(t, "\n=== Retrieval ===\n", buf.String())
}

func TestError_AlwaysPrinted(t *testing.T) {
	buf := reset(t)
	SetVerbose(false)

	Error("boom: %v", "disk")

	assert.Equal(t, "[ERROR] boom: disk\n", buf.String())
}

func TestWithFields_SortedKeys(t *testing.T) {
	buf := reset(t)
	SetVerbose(true)

	WithFields(map[string]any{"verdict": "ok", "kept": 4}).Info("ask")

	assert.Equal(t, "[INFO] ask kept=4 verdict=ok\n", buf.String())
}

func TestSetJSON(t *testing.T) {
	buf := reset(t)
	SetVerbose(true)
	SetJSON(true)

	WithFields(map[string]any{"request_id": "r1"}).Info("ask")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ask", line["msg"])
	assert.Equal(t, "r1", line["request_id"])
	assert.Equal(t, "info", line["level"])
}
