package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent questions and rebuilds",
	Long:  `Lists the most recent questions asked, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryAsks,
}

var historyRebuildsCmd = &cobra.Command{
	Use:   "rebuilds",
	Short: "Show recent index rebuilds",
	Args:  cobra.NoArgs,
	RunE:  runHistoryRebuilds,
}

func init() {
	historyCmd.PersistentFlags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries")
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyCmd.AddCommand(historyRebuildsCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryAsks(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return notConfigured("history service")
	}

	asks, err := historyService.Asks(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if historyJSON {
		return writeJSON(cmd.OutOrStdout(), asks)
	}
	if len(asks) == 0 {
		cmd.Println("No questions asked yet.")
		return nil
	}

	for _, a := range asks {
		status := a.Verdict.String()
		if a.Error != "" {
			status = "error"
		}
		cmd.Printf("%s  %-14s  %s\n", a.CreatedAt.Local().Format("2006-01-02 15:04"), status, a.Question)
		if len(a.Sources) > 0 {
			cmd.Printf("    sources: %s\n", strings.Join(a.Sources, ", "))
		}
		if a.Error != "" {
			cmd.Printf("    error: %s\n", a.Error)
		}
	}
	return nil
}

func runHistoryRebuilds(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return notConfigured("history service")
	}

	rebuilds, err := historyService.Rebuilds(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if historyJSON {
		return writeJSON(cmd.OutOrStdout(), rebuilds)
	}
	if len(rebuilds) == 0 {
		cmd.Println("No rebuilds recorded.")
		return nil
	}

	for _, r := range rebuilds {
		cmd.Printf("%s  %-5s  %6s  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"), r.Status,
			r.Duration.Round(100*time.Millisecond), r.Message)
	}
	return nil
}
