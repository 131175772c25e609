package cli

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setVersion(t *testing.T, v string) {
	t.Helper()
	prev := version
	version = v
	t.Cleanup(func() { version = prev })
}

func TestVersion_Plain(t *testing.T) {
	setVersion(t, "v0.3.1")

	out, err := executeCommand(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "pulsrag v0.3.1")
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersion_JSON(t *testing.T) {
	setVersion(t, "dev")

	out, err := executeCommand(t, "version", "--json")

	require.NoError(t, err)
	var info versionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info.Version)
	assert.Equal(t, runtime.Version(), info.Go)
}

func TestSetVersion_IgnoresEmpty(t *testing.T) {
	setVersion(t, "dev")

	SetVersion("")
	assert.Equal(t, "dev", version)

	SetVersion("v1.0.0")
	assert.Equal(t, "v1.0.0", version)
}
