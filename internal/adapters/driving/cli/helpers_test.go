package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// executeCommand runs the root command with fresh flag values and
// returns everything it printed.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil) //nolint:errcheck // string slices accept nil
		} else {
			_ = f.Value.Set(f.DefValue) //nolint:errcheck // defaults always parse
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// withServices installs services for one test.
func withServices(t *testing.T, s *Services) {
	t.Helper()
	Configure(s)
	t.Cleanup(func() { Configure(&Services{}) })
}

type mockAnswerService struct {
	answer  *domain.Answer
	err     error
	lastReq domain.AskRequest
	calls   int
}

func (m *mockAnswerService) Ask(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
	m.calls++
	m.lastReq = req
	return m.answer, m.err
}

func (m *mockAnswerService) AllowedCities() []string {
	return domain.DefaultAllowedCities()
}

type mockRebuildService struct {
	result *domain.RebuildResult
	err    error
	calls  int
}

func (m *mockRebuildService) Rebuild(_ context.Context) (*domain.RebuildResult, error) {
	m.calls++
	return m.result, m.err
}

type mockHistoryService struct {
	asks      []domain.AskRecord
	rebuilds  []domain.RebuildResult
	err       error
	lastLimit int
}

func (m *mockHistoryService) Asks(_ context.Context, limit int) ([]domain.AskRecord, error) {
	m.lastLimit = limit
	return m.asks, m.err
}

func (m *mockHistoryService) Rebuilds(_ context.Context, limit int) ([]domain.RebuildResult, error) {
	m.lastLimit = limit
	return m.rebuilds, m.err
}

type mockEvalService struct {
	report *domain.EvalReport
	err    error
	cases  []domain.EvalCase
}

func (m *mockEvalService) Run(_ context.Context, cases []domain.EvalCase) (*domain.EvalReport, error) {
	m.cases = cases
	return m.report, m.err
}

type mockIngestService struct {
	report    *domain.IngestReport
	err       error
	rawPath   string
	cleanPath string
}

func (m *mockIngestService) Ingest(_ context.Context, rawPath, cleanPath string) (*domain.IngestReport, error) {
	m.rawPath = rawPath
	m.cleanPath = cleanPath
	return m.report, m.err
}

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	set         map[string]any
	setErr      error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), set: map[string]any{}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider, m.settings.LLM.Model, m.settings.LLM.APIKey = p, model, apiKey
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider, m.settings.Embedding.Model, m.settings.Embedding.APIKey = p, model, apiKey
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ConfigPath() string { return "/tmp/pulsrag/config.toml" }
