// Command pulsrag answers questions about cultural events from OpenAgenda.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/ai"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/builder/command"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/builder/local"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/config/file"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/storage/jsonl"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/storage/memory"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/storage/sqlite"
	vsqlite "github.com/perachon/p7-puls-events-rag/internal/adapters/driven/vectorstore/sqlite"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/watcher"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/cli"
	"github.com/perachon/p7-puls-events-rag/internal/connectors/openagenda"
	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
	"github.com/perachon/p7-puls-events-rag/internal/core/services"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
	openagendanorm "github.com/perachon/p7-puls-events-rag/internal/normalisers/openagenda"
	"github.com/perachon/p7-puls-events-rag/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=v1.2.3".
var version = "dev"

func main() {
	cli.SetVersion(version)

	closers, err := configure()
	if err == nil {
		err = cli.Execute()
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	if err != nil {
		os.Exit(1)
	}
}

// configure builds every service the commands use. Services whose AI
// providers cannot be built are left nil and the reason is reported
// by the commands that need them.
func configure() ([]func(), error) {
	var closers []func()

	home, err := file.HomeDir()
	if err != nil {
		return closers, err
	}
	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return closers, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, home)
	settings, err := settingsService.Get()
	if err != nil {
		return closers, fmt.Errorf("load settings: %w", err)
	}

	asks, rebuilds, closeStore := openHistory(settings.Storage.Path)
	closers = append(closers, closeStore)

	files := jsonl.NewStore()
	svc := &cli.Services{
		Settings:          settingsService,
		History:           services.NewHistoryService(asks, rebuilds),
		ValidateEmbedding: ai.ValidateEmbeddingConfig,
		ValidateLLM:       ai.ValidateLLMConfig,
	}

	if source, err := openagenda.New(openagenda.ConfigFromSettings(settings.OpenAgenda), nil); err != nil {
		logger.Debug("ingest unavailable: %v", err)
		svc.Err = err
	} else {
		svc.Ingest = services.NewIngestService(source, openagendanorm.New(), files)
	}

	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		svc.Err = fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		cli.Configure(svc)
		return closers, nil
	}
	closers = append(closers, func() { _ = embedder.Close() })

	provider := services.NewIndexProvider(vsqlite.NewLoader(settings.Index.Path, embedder))
	svc.Invalidate = provider.Invalidate

	builder, err := newBuilder(settings, home, embedder)
	if err != nil {
		logger.Warn("rebuild unavailable: %v", err)
	} else {
		svc.Rebuild = services.NewRebuildService(builder, provider, rebuilds)
	}

	if settings.Schedule.Enabled && svc.Ingest != nil && svc.Rebuild != nil {
		svc.Scheduler = services.NewScheduler(settings.Schedule.SchedulerConfig(), svc.Ingest, svc.Rebuild,
			services.RefreshPaths{
				Raw:   filepath.Join(filepath.Dir(settings.Rebuild.Input), "events_raw.json"),
				Clean: settings.Rebuild.Input,
			})
	}

	if settings.Index.Watch {
		w, err := watcher.New(settings.Index.Path, watcher.DefaultDebounce)
		if err != nil {
			logger.Debug("index watch disabled: %v", err)
		} else {
			svc.Watcher = w
			closers = append(closers, func() { _ = w.Close() })
		}
	}

	llm, err := ai.CreateLLMService(&settings.LLM)
	if err != nil {
		svc.Err = fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
		cli.Configure(svc)
		return closers, nil
	}
	closers = append(closers, func() { _ = llm.Close() })

	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		return closers, fmt.Errorf("open prompts: %w", err)
	}

	retriever := services.NewRetriever(provider, settings.Retrieval.Policy)
	assembler := services.NewAssembler(llm, prompts, ai.ChatOptions(&settings.LLM))
	answers := services.NewAnswerService(retriever, assembler, settings.Retrieval, services.WithAskLog(asks))

	svc.Answer = answers
	svc.Eval = services.NewEvalService(answers)

	cli.Configure(svc)
	return closers, nil
}

// openHistory opens the sqlite history, falling back to memory so asks
// are never refused because the database is unavailable.
func openHistory(path string) (driven.AskLogStore, driven.RebuildLogStore, func()) {
	if path != "" {
		store, err := sqlite.NewStore(path)
		if err == nil {
			return store.AskLogStore(), store.RebuildLogStore(), func() { _ = store.Close() }
		}
		logger.Warn("history database unavailable, keeping history in memory: %v", err)
	}
	mem := memory.NewHistoryStore()
	return mem, mem, func() {}
}

func newBuilder(settings *domain.AppSettings, home string, embedder driven.EmbeddingService) (driven.IndexBuilder, error) {
	switch settings.Rebuild.Mode {
	case domain.RebuildModeCommand:
		return command.New(settings.Rebuild.Command,
			command.WithDir(home),
			command.WithEnv("PULSRAG_INDEX_PATH="+settings.Index.Path))
	case domain.RebuildModeLocal:
		pipeline, err := postprocessors.DefaultPipeline(settings.Rebuild, settings.OpenAgenda.AgendaSlug)
		if err != nil {
			return nil, err
		}
		return local.New(local.Config{
			Input:        settings.Rebuild.Input,
			ArtifactPath: settings.Index.Path,
			BatchSize:    settings.Rebuild.BatchSize,
		}, embedder, pipeline, openagendanorm.New()), nil
	default:
		return nil, errors.New("unknown rebuild mode " + settings.Rebuild.Mode.String())
	}
}
