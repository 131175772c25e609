package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/rest"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API",
	Long: `Serves the question answering API over HTTP.

Endpoints:
  GET  /                  health check
  POST /ask               answer a question
  POST /rebuild           rebuild the vector index
  GET  /cities            the city whitelist
  GET  /history/asks      recent questions
  GET  /history/rebuilds  recent rebuilds

When index.watch is enabled the cached index is reloaded as soon as
the artifact changes on disk.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default: server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if answerService == nil {
		return notConfigured("answer service")
	}

	addr := serveAddr
	var origins []string
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		if addr == "" {
			addr = settings.Server.Addr
		}
		origins = settings.Server.CORSOrigins
	}
	if addr == "" {
		addr = ":8000"
	}

	server, err := rest.NewServer(&rest.Ports{
		Answer:  answerService,
		Rebuild: rebuildService,
		History: historyService,
	}, rest.Options{CORSOrigins: origins})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startWatcher(ctx)
	defer startScheduler(ctx)()

	cmd.Printf("REST API listening on http://localhost%s\n", addr)
	return server.ListenAndServe(ctx, addr)
}

// startWatcher invalidates the cached index whenever the artifact changes.
func startWatcher(ctx context.Context) {
	if artifactWatcher == nil || invalidateIndex == nil {
		return
	}
	go func() {
		err := artifactWatcher.Run(ctx, invalidateIndex)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("index watcher stopped: %v", err)
		}
	}()
}

// startScheduler runs the background event refresh and returns its stop func.
func startScheduler(ctx context.Context) func() {
	if scheduler == nil {
		return func() {}
	}
	go func() {
		err := scheduler.Start(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("scheduler stopped: %v", err)
		}
	}()
	return func() {
		if err := scheduler.Stop(); err != nil {
			logger.Warn("scheduler stop error: %v", err)
		}
	}
}
