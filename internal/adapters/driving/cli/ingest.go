package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var (
	ingestRawPath   string
	ingestCleanPath string
	ingestRebuild   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch and clean events from OpenAgenda",
	Long: `Fetches every event of the configured agenda, writes the raw export,
then cleans the events and writes the index-ready JSONL file used by rebuild.

Events more than a year old, events without a start date and events with
too little text are dropped.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestRawPath, "raw", "", "raw export path (default: next to the cleaned file)")
	ingestCmd.Flags().StringVarP(&ingestCleanPath, "out", "o", "", "cleaned JSONL path (default: rebuild.input)")
	ingestCmd.Flags().BoolVar(&ingestRebuild, "rebuild", false, "rebuild the index after ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return notConfigured("ingest service")
	}

	cleanPath := ingestCleanPath
	if cleanPath == "" && settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		cleanPath = settings.Rebuild.Input
	}
	rawPath := ingestRawPath
	if rawPath == "" && cleanPath != "" {
		rawPath = filepath.Join(filepath.Dir(cleanPath), "events_raw.json")
	}

	cmd.Println("Fetching events from OpenAgenda...")
	report, err := ingestService.Ingest(cmd.Context(), rawPath, cleanPath)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Agenda %s: %d fetched, %d kept (%d past year, %d upcoming), %d dropped in %s\n",
		report.Source, report.Fetched, report.Kept, report.PastYear, report.Upcoming,
		report.Dropped, report.Duration.Round(time.Millisecond))
	if report.RawPath != "" {
		cmd.Printf("  Raw:     %s\n", report.RawPath)
	}
	if report.CleanPath != "" {
		cmd.Printf("  Cleaned: %s\n", report.CleanPath)
	}

	if ingestRebuild {
		return runRebuild(cmd, nil)
	}
	return nil
}
