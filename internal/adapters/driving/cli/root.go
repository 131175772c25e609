// Package cli implements the pulsrag command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driving"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

var (
	verbose  bool
	jsonLogs bool
)

// Services wired by main. Any of them may be nil when its dependencies
// could not be built; commands report why through servicesErr.
var (
	answerService   driving.AnswerService
	rebuildService  driving.RebuildService
	historyService  driving.HistoryService
	evalService     driving.EvalService
	ingestService   driving.IngestService
	settingsService driving.SettingsService

	artifactWatcher driven.ArtifactWatcher
	invalidateIndex func()
	scheduler       driving.Scheduler

	validateEmbedding func(context.Context, *domain.EmbeddingSettings) error
	validateLLM       func(context.Context, *domain.LLMSettings) error

	servicesErr error
)

// Services groups everything the commands need.
type Services struct {
	Answer   driving.AnswerService
	Rebuild  driving.RebuildService
	History  driving.HistoryService
	Eval     driving.EvalService
	Ingest   driving.IngestService
	Settings driving.SettingsService

	// Watcher reports index artifact changes while serving. Optional.
	Watcher driven.ArtifactWatcher

	// Invalidate drops the cached index so the next ask reloads it.
	Invalidate func()

	// Scheduler refreshes events in the background of serve commands. Optional.
	Scheduler driving.Scheduler

	// ValidateEmbedding and ValidateLLM ping a provider before it is saved.
	ValidateEmbedding func(context.Context, *domain.EmbeddingSettings) error
	ValidateLLM       func(context.Context, *domain.LLMSettings) error

	// Err explains why some services are missing, typically an
	// unconfigured AI provider.
	Err error
}

// Configure installs the services used by every command.
func Configure(s *Services) {
	answerService = s.Answer
	rebuildService = s.Rebuild
	historyService = s.History
	evalService = s.Eval
	ingestService = s.Ingest
	settingsService = s.Settings
	artifactWatcher = s.Watcher
	invalidateIndex = s.Invalidate
	scheduler = s.Scheduler
	validateEmbedding = s.ValidateEmbedding
	validateLLM = s.ValidateLLM
	servicesErr = s.Err
}

var rootCmd = &cobra.Command{
	Use:   "pulsrag",
	Short: "Ask questions about upcoming cultural events",
	Long: `pulsrag answers natural-language questions about cultural events
published on OpenAgenda, citing the events it used.

It ingests events, builds a local vector index, and serves answers from
the command line, a REST API, an MCP server or an interactive terminal UI.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		logger.SetJSON(jsonLogs)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "log-json", false, "emit logs as JSON")
}

// Execute runs the root command with output on stdout.
func Execute() error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.Execute()
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// notConfigured builds the error returned when a command's service is missing.
func notConfigured(what string) error {
	if servicesErr != nil {
		return fmt.Errorf("%s not configured: %w", what, servicesErr)
	}
	return errors.New(what + " not configured")
}
