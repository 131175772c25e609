package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

var rebuildJSON bool

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the events vector index",
	Long: `Rebuilds the vector index from the cleaned events file.

In local mode the events are chunked, embedded and written to a new
artifact that replaces the live one. In command mode the configured
external command is run instead and its output is captured.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

func init() {
	rebuildCmd.Flags().BoolVar(&rebuildJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	if rebuildService == nil {
		return notConfigured("rebuild service")
	}

	if !rebuildJSON {
		cmd.Println("Rebuilding vectorstore...")
	}

	res, err := rebuildService.Rebuild(cmd.Context())
	if res == nil {
		if err == nil {
			err = domain.ErrRebuildFailed
		}
		return fmt.Errorf("rebuild failed: %w", err)
	}

	if rebuildJSON {
		if jerr := writeJSON(cmd.OutOrStdout(), rebuildOutput{
			Status:    res.Status,
			Message:   res.Message,
			DurationS: res.DurationSeconds(),
			Details:   res.Details,
		}); jerr != nil {
			return jerr
		}
	} else {
		printRebuild(cmd, res)
	}

	if err != nil && !errors.Is(err, domain.ErrRebuildFailed) {
		return err
	}
	if !res.OK() {
		return domain.ErrRebuildFailed
	}
	return nil
}

type rebuildOutput struct {
	Status    domain.RebuildStatus  `json:"status"`
	Message   string                `json:"message"`
	DurationS float64               `json:"duration_s"`
	Details   domain.RebuildDetails `json:"details"`
}

func printRebuild(cmd *cobra.Command, res *domain.RebuildResult) {
	cmd.Printf("%s (%.1fs)\n", res.Message, res.DurationSeconds())

	d := res.Details
	if d.Events > 0 || d.Documents > 0 {
		cmd.Printf("  Events: %d, chunks: %d\n", d.Events, d.Documents)
	}
	if d.Artifact != "" {
		cmd.Printf("  Artifact: %s\n", d.Artifact)
	}
	if res.OK() {
		return
	}
	if d.ReturnCode != nil {
		cmd.Printf("  Exit code: %d\n", *d.ReturnCode)
	}
	if d.Error != "" {
		cmd.Printf("  Error: %s\n", d.Error)
	}
	if d.Stderr != "" {
		cmd.Println("  stderr:")
		cmd.Println(d.Stderr)
	}
}
