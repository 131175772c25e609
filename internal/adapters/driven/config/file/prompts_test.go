package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "prompts"), store.Dir())
	assert.NoDirExists(t, store.Dir(), "constructor must not touch the disk")
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptHuman)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultHumanPrompt, prompt)

	for _, f := range []string{"system.txt", "human.txt", "README.md"} {
		assert.FileExists(t, filepath.Join(dir, f))
	}
}

func TestPromptStore_Load_CustomContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "system.txt"), []byte("  Réponds en une phrase.\n"), 0o600))
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptSystem)

	require.NoError(t, err)
	assert.Equal(t, "Réponds en une phrase.", prompt)

	// Existing files are not overwritten by defaults.
	data, err := os.ReadFile(filepath.Join(dir, "system.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Réponds en une phrase.")
}

func TestPromptStore_EmptyFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "human.txt"), []byte("   "), 0o600))
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptHuman)

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultHumanPrompt, prompt)
}

func TestPromptStore_MissingPlaceholderFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "human.txt"), []byte("Question : {question}"), 0o600))
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptHuman)

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultHumanPrompt, prompt)
}

func TestPromptStore_SeedFailureUsesDefaults(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	store, err := NewPromptStore(filepath.Join(blocker, "prompts"))
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptSystem)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSystemPrompt, prompt)

	_, err = store.Load("nope")
	assert.ErrorContains(t, err, "init failed")
}

func TestPromptStore_Reload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptSystem)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "system.txt"), []byte("v2"), 0o600))

	cached, err := store.Load(driven.PromptSystem)
	require.NoError(t, err)
	assert.NotEqual(t, "v2", cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptSystem)
	require.NoError(t, err)
	assert.Equal(t, "v2", fresh)
}

func TestPromptStore_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nope")
	assert.Error(t, err)
}

func TestPromptStore_ConcurrentLoad(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := store.Load(driven.PromptSystem)
			assert.NoError(t, err)
			assert.NotEmpty(t, p)
		}()
	}
	wg.Wait()
}
