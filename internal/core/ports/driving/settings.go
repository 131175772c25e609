package driving

import "github.com/perachon/p7-puls-events-rag/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with defaults,
	// environment overrides and resolved paths applied.
	Get() (*domain.AppSettings, error)

	// Set stores one dotted configuration key.
	Set(key string, value any) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks the current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ConfigPath returns the configuration file location.
	ConfigPath() string
}
