package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/evalfile"
	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

var (
	evalGoldPath string
	evalOutJSON  string
	evalOutCSV   string
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Score answers against a gold question set",
	Long: `Asks every question of a gold set and compares the cited event uids
with the expected ones.

The gold set is a JSONL or YAML file of {id, question, expected_uids}
rows. Each case is graded correct, partial or incorrect.`,
	Example: `  pulsrag eval --gold eval/gold.jsonl --out-json eval/report.json --out-csv eval/report.csv`,
	Args:    cobra.NoArgs,
	RunE:    runEval,
}

func init() {
	evalCmd.Flags().StringVarP(&evalGoldPath, "gold", "g", "", "gold question set (JSONL or YAML)")
	evalCmd.Flags().StringVar(&evalOutJSON, "out-json", "", "write the full report as JSON")
	evalCmd.Flags().StringVar(&evalOutCSV, "out-csv", "", "write per-case results as CSV")
	_ = evalCmd.MarkFlagRequired("gold") //nolint:errcheck // flag is defined above
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, _ []string) error {
	if evalService == nil {
		return notConfigured("eval service")
	}

	cases, err := evalfile.LoadCases(evalGoldPath)
	if err != nil {
		return fmt.Errorf("failed to load gold set: %w", err)
	}

	cmd.Printf("Evaluating %d questions...\n", len(cases))
	report, err := evalService.Run(cmd.Context(), cases)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	for _, row := range report.Results {
		mark := string(row.Verdict)
		if row.Error != "" {
			mark = "error"
		}
		cmd.Printf("  [%-9s] %s  P=%.2f R=%.2f F1=%.2f\n", mark, row.ID, row.Precision, row.Recall, row.F1)
	}
	printEvalSummary(cmd, &report.Summary)

	if evalOutJSON != "" {
		if err := evalfile.WriteJSON(evalOutJSON, report); err != nil {
			return err
		}
		cmd.Printf("Report written to %s\n", evalOutJSON)
	}
	if evalOutCSV != "" {
		if err := evalfile.WriteCSV(evalOutCSV, report); err != nil {
			return err
		}
		cmd.Printf("Results written to %s\n", evalOutCSV)
	}
	return nil
}

func printEvalSummary(cmd *cobra.Command, s *domain.EvalSummary) {
	cmd.Println()
	cmd.Printf("Questions: %d\n", s.N)
	cmd.Printf("  correct:   %3d (%.1f%%)\n", s.Counts[domain.EvalCorrect], 100*s.AccuracyCorrect)
	cmd.Printf("  partial:   %3d (%.1f%%)\n", s.Counts[domain.EvalPartial], 100*s.RatePartial)
	cmd.Printf("  incorrect: %3d (%.1f%%)\n", s.Counts[domain.EvalIncorrect], 100*s.RateIncorrect)
}
