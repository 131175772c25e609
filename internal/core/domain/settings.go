package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderMistral is Mistral cloud API (OpenAI-compatible wire format).
	AIProviderMistral AIProvider = "mistral"

	// AIProviderAnthropic is Anthropic cloud API (chat only).
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderStatic is a deterministic offline LLM used for demos and tests.
	AIProviderStatic AIProvider = "static"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderMistral, AIProviderAnthropic, AIProviderStatic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderMistral || p == AIProviderAnthropic
}

// SupportsEmbeddings returns true if the provider can produce vectors.
func (p AIProvider) SupportsEmbeddings() bool {
	for _, e := range AllEmbeddingProviders() {
		if e == p {
			return true
		}
	}
	return false
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderStatic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderMistral:
		return "Mistral (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderStatic:
		return "Static (offline, canned text)"
	default:
		return unknownDescription
	}
}

// RebuildMode selects how the index is rebuilt.
type RebuildMode string

// Available rebuild modes.
const (
	// RebuildModeLocal runs the ETL pipeline in-process.
	RebuildModeLocal RebuildMode = "local"

	// RebuildModeCommand runs an external build command.
	RebuildModeCommand RebuildMode = "command"
)

// IsValid returns true if the rebuild mode is recognised.
func (m RebuildMode) IsValid() bool {
	return m == RebuildModeLocal || m == RebuildModeCommand
}

// String returns the string representation.
func (m RebuildMode) String() string {
	return string(m)
}

// RetrievalSettings holds the retrieval policy and the city whitelist.
type RetrievalSettings struct {
	Policy RetrievalPolicy

	// AllowedCities is the whitelist domain for city filters.
	AllowedCities []string
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// Temperature is the sampling temperature.
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings locates the vector index artifact.
type IndexSettings struct {
	// Path is the artifact file.
	Path string

	// Watch invalidates the cached index when the artifact changes on disk.
	Watch bool
}

// RebuildSettings configures index rebuilds.
type RebuildSettings struct {
	Mode RebuildMode

	// Command is the argv run in command mode.
	Command []string

	// Input is the cleaned events JSONL (or raw OpenAgenda JSON) read in local mode.
	Input string

	ChunkSize    int
	ChunkOverlap int

	// BatchSize is the number of chunks embedded per request.
	BatchSize int
}

// OpenAgendaSettings configures event ingestion.
type OpenAgendaSettings struct {
	BaseURL   string
	APIKey    string
	AgendaUID string
	PageSize  int

	// AgendaSlug names the agenda in public URLs (agenda_url metadata).
	AgendaSlug string

	// RequestsPerSecond paces API calls.
	RequestsPerSecond float64
}

// ServerSettings configures the REST API.
type ServerSettings struct {
	Addr        string
	CORSOrigins []string
}

// StorageSettings locates the ask history database.
type StorageSettings struct {
	Path string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Retrieval  RetrievalSettings
	Embedding  EmbeddingSettings
	LLM        LLMSettings
	Index      IndexSettings
	Rebuild    RebuildSettings
	OpenAgenda OpenAgendaSettings
	Server     ServerSettings
	Storage    StorageSettings
	Schedule   ScheduleSettings
}

// DefaultAllowedCities returns the default city whitelist.
func DefaultAllowedCities() []string {
	return []string{
		"Gif-sur-Yvette",
		"Orsay",
		"Évry",
		"Sceaux",
		"Paris",
		"Le Plessis-Robinson",
		"Bures-sur-Yvette",
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// Paths are left empty; the settings service resolves them under the
// application directory.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Retrieval: RetrievalSettings{
			Policy:        DefaultRetrievalPolicy(),
			AllowedCities: DefaultAllowedCities(),
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
		},
		LLM: LLMSettings{
			Provider:    AIProviderMistral,
			Model:       DefaultLLMModels()[AIProviderMistral],
			Temperature: 0.2,
		},
		Index: IndexSettings{
			Watch: true,
		},
		Rebuild: RebuildSettings{
			Mode:         RebuildModeLocal,
			ChunkSize:    800,
			ChunkOverlap: 120,
			BatchSize:    32,
		},
		OpenAgenda: OpenAgendaSettings{
			BaseURL:           "https://api.openagenda.com/v2",
			PageSize:          100,
			RequestsPerSecond: 2,
		},
		Server: ServerSettings{
			Addr: ":8000",
		},
		Schedule: ScheduleSettings{
			RefreshInterval: DefaultRefreshInterval,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderMistral,
	}
}

// AllLLMProviders returns providers that support chat completion.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderMistral,
		AIProviderOpenAI,
		AIProviderOllama,
		AIProviderAnthropic,
		AIProviderStatic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:  "all-minilm",
		AIProviderOpenAI:  "text-embedding-3-small",
		AIProviderMistral: "mistral-embed",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderMistral:   "mistral-small-latest",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderOllama:    "llama3.2",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
		AIProviderStatic:    "static",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"all-minilm":        384,
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		// Mistral models
		"mistral-embed": 1024,
	}
}
