package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyKFetch            = "retrieval.k_fetch"
	keyKFinal            = "retrieval.k_final"
	keyMaxDistance       = "retrieval.max_distance"
	keyRelaxStep         = "retrieval.relax_step"
	keyMinResults        = "retrieval.min_results"
	keyConfidenceCeiling = "retrieval.confidence_ceiling"
	keyAllowedCities     = "retrieval.allowed_cities"

	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"

	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMTemperature = "llm.temperature"

	keyIndexPath  = "index.path"
	keyIndexWatch = "index.watch"

	keyRebuildMode      = "rebuild.mode"
	keyRebuildCommand   = "rebuild.command"
	keyRebuildInput     = "rebuild.input"
	keyRebuildChunkSize = "rebuild.chunk_size"
	keyRebuildOverlap   = "rebuild.chunk_overlap"
	keyRebuildBatchSize = "rebuild.batch_size"

	keyAgendaBaseURL  = "openagenda.base_url"
	keyAgendaAPIKey   = "openagenda.api_key"
	keyAgendaUID      = "openagenda.agenda_uid"
	keyAgendaSlug     = "openagenda.agenda_slug"
	keyAgendaPageSize = "openagenda.page_size"
	keyAgendaRPS      = "openagenda.rps"

	keyServerAddr = "server.addr"
	keyServerCORS = "server.cors_origins"

	keyStoragePath = "storage.path"

	keyScheduleEnabled    = "schedule.enabled"
	keyScheduleInterval   = "schedule.refresh_interval"
	keyScheduleRunOnStart = "schedule.run_on_start"
)

// Environment variables that override the config file.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvMistralAPIKey    = "MISTRAL_API_KEY"
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
	EnvAnthropicAPIKey  = "ANTHROPIC_API_KEY"
	EnvAgendaAPIKey     = "OPENAGENDA_API_KEY"
	EnvAgendaUID        = "OPENAGENDA_AGENDA_UID"
	EnvAgendaBaseURL    = "OPENAGENDA_BASE_URL"
	EnvIndexPath        = "PULSRAG_INDEX_PATH"
	defaultOllamaURL    = "http://localhost:11434"
	defaultIndexFile    = "index/events.db"
	defaultStorageFile  = "pulsrag.db"
	defaultRebuildInput = "data/events_index_ready.jsonl"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	baseDir     string
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// Relative and default paths resolve against baseDir.
func NewSettingsService(configStore driven.ConfigStore, baseDir string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		baseDir:     baseDir,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Retrieval: domain.RetrievalSettings{
			Policy: domain.RetrievalPolicy{
				KFetch:            s.getInt(keyKFetch, d.Retrieval.Policy.KFetch),
				KFinal:            s.getInt(keyKFinal, d.Retrieval.Policy.KFinal),
				MaxDistance:       s.getFloat(keyMaxDistance, d.Retrieval.Policy.MaxDistance),
				RelaxStep:         s.getFloat(keyRelaxStep, d.Retrieval.Policy.RelaxStep),
				MinResults:        s.getInt(keyMinResults, d.Retrieval.Policy.MinResults),
				ConfidenceCeiling: s.getFloat(keyConfidenceCeiling, d.Retrieval.Policy.ConfidenceCeiling),
			},
			AllowedCities: s.getStringSlice(keyAllowedCities, d.Retrieval.AllowedCities),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, d.LLM.Provider),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL),
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			Temperature: s.getFloat(keyLLMTemperature, d.LLM.Temperature),
		},
		Index: domain.IndexSettings{
			Path:  s.resolve(s.getString(keyIndexPath, defaultIndexFile)),
			Watch: s.getBool(keyIndexWatch, d.Index.Watch),
		},
		Rebuild: domain.RebuildSettings{
			Mode:         s.getRebuildMode(d.Rebuild.Mode),
			Command:      s.configStore.GetStringSlice(keyRebuildCommand),
			Input:        s.resolve(s.getString(keyRebuildInput, defaultRebuildInput)),
			ChunkSize:    s.getInt(keyRebuildChunkSize, d.Rebuild.ChunkSize),
			ChunkOverlap: s.getInt(keyRebuildOverlap, d.Rebuild.ChunkOverlap),
			BatchSize:    s.getInt(keyRebuildBatchSize, d.Rebuild.BatchSize),
		},
		OpenAgenda: domain.OpenAgendaSettings{
			BaseURL:           s.getString(keyAgendaBaseURL, d.OpenAgenda.BaseURL),
			APIKey:            s.configStore.GetString(keyAgendaAPIKey),
			AgendaUID:         s.configStore.GetString(keyAgendaUID),
			AgendaSlug:        s.configStore.GetString(keyAgendaSlug),
			PageSize:          s.getInt(keyAgendaPageSize, d.OpenAgenda.PageSize),
			RequestsPerSecond: s.getFloat(keyAgendaRPS, d.OpenAgenda.RequestsPerSecond),
		},
		Server: domain.ServerSettings{
			Addr:        s.getString(keyServerAddr, d.Server.Addr),
			CORSOrigins: s.configStore.GetStringSlice(keyServerCORS),
		},
		Storage: domain.StorageSettings{
			Path: s.resolve(s.getString(keyStoragePath, defaultStorageFile)),
		},
		Schedule: domain.ScheduleSettings{
			Enabled:         s.getBool(keyScheduleEnabled, d.Schedule.Enabled),
			RefreshInterval: s.getDuration(keyScheduleInterval, d.Schedule.RefreshInterval),
			RunOnStart:      s.getBool(keyScheduleRunOnStart, d.Schedule.RunOnStart),
		},
	}

	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])
	if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = defaultOllamaURL
	}
	if settings.LLM.Provider == domain.AIProviderOllama && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = defaultOllamaURL
	}

	s.applyEnv(settings)
	return settings, nil
}

// applyEnv lets environment variables override stored values.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	providerKey := map[domain.AIProvider]string{
		domain.AIProviderMistral:   EnvMistralAPIKey,
		domain.AIProviderOpenAI:    EnvOpenAIAPIKey,
		domain.AIProviderAnthropic: EnvAnthropicAPIKey,
	}
	if env, ok := providerKey[settings.LLM.Provider]; ok {
		if v := s.getenv(env); v != "" {
			settings.LLM.APIKey = v
		}
	}
	if env, ok := providerKey[settings.Embedding.Provider]; ok {
		if v := s.getenv(env); v != "" {
			settings.Embedding.APIKey = v
		}
	}
	if v := s.getenv(EnvAgendaAPIKey); v != "" {
		settings.OpenAgenda.APIKey = v
	}
	if v := s.getenv(EnvAgendaUID); v != "" {
		settings.OpenAgenda.AgendaUID = v
	}
	if v := s.getenv(EnvAgendaBaseURL); v != "" {
		settings.OpenAgenda.BaseURL = v
	}
	if v := s.getenv(EnvIndexPath); v != "" {
		settings.Index.Path = s.resolve(v)
	}
}

// Set stores one dotted configuration key.
func (s *SettingsService) Set(key string, value any) error {
	if !strings.Contains(key, ".") {
		return fmt.Errorf("%w: key %q must be section.name", domain.ErrInvalidInput, key)
	}
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.SupportsEmbeddings() {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	return s.setProvider("embedding", provider, model, apiKey, domain.DefaultEmbeddingModels())
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	return s.setProvider("llm", provider, model, apiKey, domain.DefaultLLMModels())
}

func (s *SettingsService) setProvider(
	section string,
	provider domain.AIProvider,
	model, apiKey string,
	defaults map[domain.AIProvider]string,
) error {
	if provider.RequiresAPIKey() && apiKey == "" && s.getenv(envKeyFor(provider)) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}
	if model == "" {
		model = defaults[provider]
	}

	baseURL := ""
	if provider == domain.AIProviderOllama {
		baseURL = defaultOllamaURL
	}
	values := []configValue{
		{section + ".provider", provider.String()},
		{section + ".model", model},
		{section + ".base_url", baseURL},
	}
	if apiKey != "" {
		values = append(values, configValue{section + ".api_key", apiKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

type configValue struct {
	key string
	val any
}

func envKeyFor(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderMistral:
		return EnvMistralAPIKey
	case domain.AIProviderOpenAI:
		return EnvOpenAIAPIKey
	case domain.AIProviderAnthropic:
		return EnvAnthropicAPIKey
	default:
		return ""
	}
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := settings.Retrieval.Policy.Validate(); err != nil {
		return fmt.Errorf("retrieval: %w", err)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("llm provider %q is not configured", settings.LLM.Provider)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider)
	}
	if !settings.Rebuild.Mode.IsValid() {
		return fmt.Errorf("invalid rebuild mode: %s", settings.Rebuild.Mode)
	}
	if settings.Rebuild.Mode == domain.RebuildModeCommand && len(settings.Rebuild.Command) == 0 {
		return fmt.Errorf("rebuild mode %q requires rebuild.command", settings.Rebuild.Mode)
	}
	if raw := s.configStore.GetString(keyScheduleInterval); raw != "" {
		if d, err := time.ParseDuration(raw); err != nil || d <= 0 {
			return fmt.Errorf("invalid %s: %q", keyScheduleInterval, raw)
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ConfigPath returns the configuration file location.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || s.baseDir == "" {
		return path
	}
	return filepath.Join(s.baseDir, path)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

// getDuration reads a Go duration string such as "6h".
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(s.configStore.GetString(key))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if val := s.configStore.GetStringSlice(key); len(val) > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getRebuildMode(defaultVal domain.RebuildMode) domain.RebuildMode {
	mode := domain.RebuildMode(s.configStore.GetString(keyRebuildMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}
