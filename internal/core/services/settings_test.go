package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/storage/memory"
	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

func newTestSettings(t *testing.T, env map[string]string) (*SettingsService, *memory.ConfigStore, string) {
	t.Helper()
	store := memory.NewConfigStore()
	dir := t.TempDir()
	s := NewSettingsService(store, dir)
	s.getenv = func(key string) string { return env[key] }
	return s, store, dir
}

func TestSettingsService_Defaults(t *testing.T) {
	s, _, dir := newTestSettings(t, nil)

	settings, err := s.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultRetrievalPolicy(), settings.Retrieval.Policy)
	assert.Equal(t, domain.DefaultAllowedCities(), settings.Retrieval.AllowedCities)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "all-minilm", settings.Embedding.Model)
	assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
	assert.Equal(t, domain.AIProviderMistral, settings.LLM.Provider)
	assert.Equal(t, "mistral-small-latest", settings.LLM.Model)
	assert.Empty(t, settings.LLM.BaseURL)
	assert.InDelta(t, 0.2, settings.LLM.Temperature, 1e-9)
	assert.Equal(t, filepath.Join(dir, "index/events.db"), settings.Index.Path)
	assert.Equal(t, filepath.Join(dir, "pulsrag.db"), settings.Storage.Path)
	assert.True(t, settings.Index.Watch)
	assert.Equal(t, domain.RebuildModeLocal, settings.Rebuild.Mode)
	assert.Equal(t, 800, settings.Rebuild.ChunkSize)
	assert.Equal(t, 120, settings.Rebuild.ChunkOverlap)
	assert.Equal(t, ":8000", settings.Server.Addr)
}

func TestSettingsService_StoredValues(t *testing.T) {
	s, store, _ := newTestSettings(t, nil)
	require.NoError(t, store.Set("retrieval.k_final", 3))
	require.NoError(t, store.Set("retrieval.max_distance", 0.8))
	require.NoError(t, store.Set("retrieval.allowed_cities", []any{"Paris", "Orsay"}))
	require.NoError(t, store.Set("index.path", "/var/lib/pulsrag/index.db"))
	require.NoError(t, store.Set("index.watch", false))
	require.NoError(t, store.Set("llm.temperature", 0.0))

	settings, err := s.Get()
	require.NoError(t, err)

	assert.Equal(t, 3, settings.Retrieval.Policy.KFinal)
	assert.InDelta(t, 0.8, settings.Retrieval.Policy.MaxDistance, 1e-9)
	assert.Equal(t, []string{"Paris", "Orsay"}, settings.Retrieval.AllowedCities)
	assert.Equal(t, "/var/lib/pulsrag/index.db", settings.Index.Path)
	assert.False(t, settings.Index.Watch)
	assert.Zero(t, settings.LLM.Temperature)
}

func TestSettingsService_EnvOverrides(t *testing.T) {
	s, store, dir := newTestSettings(t, map[string]string{
		EnvMistralAPIKey: "env-key",
		EnvAgendaUID:     "12345",
		EnvIndexPath:     "custom.db",
		EnvAgendaBaseURL: "http://agenda.test",
		EnvAgendaAPIKey:  "oa-key",
	})
	require.NoError(t, store.Set("llm.api_key", "file-key"))

	settings, err := s.Get()
	require.NoError(t, err)

	assert.Equal(t, "env-key", settings.LLM.APIKey)
	assert.Equal(t, "12345", settings.OpenAgenda.AgendaUID)
	assert.Equal(t, "oa-key", settings.OpenAgenda.APIKey)
	assert.Equal(t, "http://agenda.test", settings.OpenAgenda.BaseURL)
	assert.Equal(t, filepath.Join(dir, "custom.db"), settings.Index.Path)
	assert.Empty(t, settings.Embedding.APIKey, "ollama embeddings take no key")
}

func TestSettingsService_Set(t *testing.T) {
	s, store, _ := newTestSettings(t, nil)

	require.NoError(t, s.Set("retrieval.k_fetch", 40))
	assert.Equal(t, 40, store.GetInt("retrieval.k_fetch"))

	err := s.Set("kfetch", 40)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	t.Run("requires key", func(t *testing.T) {
		s, _, _ := newTestSettings(t, nil)
		assert.Error(t, s.SetLLMProvider(domain.AIProviderMistral, "", ""))
	})

	t.Run("key from env is enough", func(t *testing.T) {
		s, store, _ := newTestSettings(t, map[string]string{EnvMistralAPIKey: "k"})
		require.NoError(t, s.SetLLMProvider(domain.AIProviderMistral, "", ""))
		assert.Equal(t, "mistral-small-latest", store.GetString("llm.model"))
		assert.Empty(t, store.GetString("llm.api_key"))
	})

	t.Run("ollama gets base url", func(t *testing.T) {
		s, store, _ := newTestSettings(t, nil)
		require.NoError(t, s.SetLLMProvider(domain.AIProviderOllama, "mistral", ""))
		assert.Equal(t, "ollama", store.GetString("llm.provider"))
		assert.Equal(t, "mistral", store.GetString("llm.model"))
		assert.Equal(t, "http://localhost:11434", store.GetString("llm.base_url"))
	})

	t.Run("invalid provider", func(t *testing.T) {
		s, _, _ := newTestSettings(t, nil)
		assert.Error(t, s.SetLLMProvider(domain.AIProvider("nope"), "", ""))
	})
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	s, store, _ := newTestSettings(t, nil)

	assert.Error(t, s.SetEmbeddingProvider(domain.AIProviderStatic, "", ""))

	require.NoError(t, s.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "sk-test"))
	assert.Equal(t, "openai", store.GetString("embedding.provider"))
	assert.Equal(t, "text-embedding-3-small", store.GetString("embedding.model"))
	assert.Equal(t, "sk-test", store.GetString("embedding.api_key"))
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("missing llm key", func(t *testing.T) {
		s, _, _ := newTestSettings(t, nil)
		assert.Error(t, s.Validate())
	})

	t.Run("configured", func(t *testing.T) {
		s, _, _ := newTestSettings(t, map[string]string{EnvMistralAPIKey: "k"})
		assert.NoError(t, s.Validate())
	})

	t.Run("inconsistent policy", func(t *testing.T) {
		s, store, _ := newTestSettings(t, map[string]string{EnvMistralAPIKey: "k"})
		require.NoError(t, store.Set("retrieval.confidence_ceiling", 0.5))
		assert.ErrorContains(t, s.Validate(), "retrieval")
	})

	t.Run("command mode without command", func(t *testing.T) {
		s, store, _ := newTestSettings(t, map[string]string{EnvMistralAPIKey: "k"})
		require.NoError(t, store.Set("rebuild.mode", "command"))
		assert.ErrorContains(t, s.Validate(), "rebuild.command")
	})

	t.Run("bad refresh interval", func(t *testing.T) {
		s, store, _ := newTestSettings(t, map[string]string{EnvMistralAPIKey: "k"})
		require.NoError(t, store.Set("schedule.refresh_interval", "daily"))
		assert.ErrorContains(t, s.Validate(), "schedule.refresh_interval")
	})
}

func TestSettingsService_Schedule(t *testing.T) {
	s, store, _ := newTestSettings(t, nil)

	settings, err := s.Get()
	require.NoError(t, err)
	assert.False(t, settings.Schedule.Enabled)
	assert.Equal(t, domain.DefaultRefreshInterval, settings.Schedule.RefreshInterval)

	require.NoError(t, store.Set("schedule.enabled", true))
	require.NoError(t, store.Set("schedule.refresh_interval", "6h"))
	require.NoError(t, store.Set("schedule.run_on_start", true))

	settings, err = s.Get()
	require.NoError(t, err)
	assert.True(t, settings.Schedule.Enabled)
	assert.True(t, settings.Schedule.RunOnStart)
	assert.Equal(t, 6*time.Hour, settings.Schedule.RefreshInterval)
}

func TestSettingsService_ConfigPath(t *testing.T) {
	s, _, _ := newTestSettings(t, nil)
	assert.Equal(t, ":memory:", s.ConfigPath())
	assert.Equal(t, domain.DefaultAppSettings(), s.GetDefaults())
}
