package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure retrieval, AI providers, the index and ingestion.

Settings are stored in config.toml under the application directory.
Environment variables (MISTRAL_API_KEY, OPENAI_API_KEY, ...) override
the stored API keys.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <section.key> <value>",
	Short: "Set one setting",
	Long: `Stores a single setting.

Lists such as retrieval.allowed_cities or rebuild.command take a
comma-separated value.`,
	Example: `  pulsrag settings set retrieval.max_distance 0.9
  pulsrag settings set retrieval.allowed_cities "Orsay,Paris,Sceaux"
  pulsrag settings set openagenda.agenda_uid 12345678`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to index and search events.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider that writes answers.`,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("Config file: %s\n", settingsService.ConfigPath())
	cmd.Println()

	p := settings.Retrieval.Policy
	cmd.Println("[Retrieval]")
	cmd.Printf("  k_fetch: %d, k_final: %d, min_results: %d\n", p.KFetch, p.KFinal, p.MinResults)
	cmd.Printf("  max_distance: %.2f, relax_step: %.2f, confidence_ceiling: %.2f\n",
		p.MaxDistance, p.RelaxStep, p.ConfidenceCeiling)
	cmd.Printf("  Allowed cities: %s\n", strings.Join(settings.Retrieval.AllowedCities, ", "))
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
	cmd.Printf("  Temperature: %.2f\n", settings.LLM.Temperature)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Path: %s\n", settings.Index.Path)
	cmd.Printf("  Watch: %t\n", settings.Index.Watch)
	cmd.Println()

	cmd.Println("[Rebuild]")
	cmd.Printf("  Mode: %s\n", settings.Rebuild.Mode)
	if settings.Rebuild.Mode == domain.RebuildModeCommand {
		cmd.Printf("  Command: %s\n", strings.Join(settings.Rebuild.Command, " "))
	} else {
		cmd.Printf("  Input: %s\n", settings.Rebuild.Input)
		cmd.Printf("  Chunks: %d chars, %d overlap, batches of %d\n",
			settings.Rebuild.ChunkSize, settings.Rebuild.ChunkOverlap, settings.Rebuild.BatchSize)
	}
	cmd.Println()

	oa := settings.OpenAgenda
	cmd.Println("[OpenAgenda]")
	cmd.Printf("  Agenda: %s (%s)\n", valueOrUnset(oa.AgendaUID), valueOrUnset(oa.AgendaSlug))
	cmd.Printf("  API: %s\n", oa.BaseURL)
	cmd.Printf("  API Key: %s\n", keyOrUnset(oa.APIKey))
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	if len(settings.Server.CORSOrigins) > 0 {
		cmd.Printf("  CORS origins: %s\n", strings.Join(settings.Server.CORSOrigins, ", "))
	}
	cmd.Printf("  History: %s\n", settings.Storage.Path)
	cmd.Println()

	cmd.Println("[Schedule]")
	if settings.Schedule.Enabled {
		cmd.Printf("  Event refresh: every %s while serving\n", settings.Schedule.RefreshInterval)
	} else {
		cmd.Println("  Event refresh: off")
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'pulsrag settings llm' or 'pulsrag settings embedding' to fix provider issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, p domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", p.Description())
	cmd.Printf("  Model: %s\n", model)
	if p.IsLocal() && baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if p.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", keyOrUnset(apiKey))
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, raw := args[0], args[1]
	value, err := parseSettingValue(key, raw)
	if err != nil {
		return err
	}
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("%s = %v\n", key, value)
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}
	return nil
}

var (
	intSettings = map[string]bool{
		"retrieval.k_fetch":     true,
		"retrieval.k_final":     true,
		"retrieval.min_results": true,
		"rebuild.chunk_size":    true,
		"rebuild.chunk_overlap": true,
		"rebuild.batch_size":    true,
		"openagenda.page_size":  true,
	}
	floatSettings = map[string]bool{
		"retrieval.max_distance":       true,
		"retrieval.relax_step":         true,
		"retrieval.confidence_ceiling": true,
		"llm.temperature":              true,
		"openagenda.rps":               true,
	}
	boolSettings = map[string]bool{
		"index.watch":           true,
		"schedule.enabled":      true,
		"schedule.run_on_start": true,
	}
	durationSettings = map[string]bool{
		"schedule.refresh_interval": true,
	}
)

// parseSettingValue converts a command-line value to the type the key is stored as.
func parseSettingValue(key, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case intSettings[key]:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects an integer, got %q", domain.ErrInvalidInput, key, raw)
		}
		return n, nil
	case floatSettings[key]:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects a number, got %q", domain.ErrInvalidInput, key, raw)
		}
		return f, nil
	case boolSettings[key]:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects true or false, got %q", domain.ErrInvalidInput, key, raw)
		}
		return b, nil
	case durationSettings[key]:
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: %s expects a duration such as 6h, got %q", domain.ErrInvalidInput, key, raw)
		}
		return d.String(), nil
	default:
		return raw, nil
	}
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	return configureEmbeddingProvider(cmd, reader)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	return configureLLMProvider(cmd, reader)
}

// promptProvider asks for a provider, a model and an API key when needed.
func promptProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	providers []domain.AIProvider,
	defaults map[domain.AIProvider]string,
) (provider domain.AIProvider, model, apiKey string) {
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider = providers[idx-1]

	defaultModel := defaults[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model = readLine(reader)
	if model == "" {
		model = defaultModel
	}

	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key (empty to use the environment): ")
		apiKey = readPassword()
		cmd.Println()
	}
	return provider, model, apiKey
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	provider, model, apiKey := promptProvider(cmd, reader,
		domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels())

	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	if validateEmbedding != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		cmd.Print("Validating configuration... ")
		if err := validateEmbedding(cmd.Context(), &settings.Embedding); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(), model)
	cmd.Println("The index must be rebuilt after changing the embedding model: run 'pulsrag rebuild'.")
	return nil
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	provider, model, apiKey := promptProvider(cmd, reader,
		domain.AllLLMProviders(), domain.DefaultLLMModels())

	if err := settingsService.SetLLMProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	if validateLLM != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		cmd.Print("Validating configuration... ")
		if err := validateLLM(cmd.Context(), &settings.LLM); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("LLM configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func keyOrUnset(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func valueOrUnset(v string) string {
	if v == "" {
		return "not set"
	}
	return v
}
