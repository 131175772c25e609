package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

var (
	askCities   []string
	askAllDates bool
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about events",
	Long: `Answers a question from the indexed events and lists the event uids used.

By default only upcoming events are considered. Use --city (repeatable)
to restrict the answer to cities from the configured whitelist.`,
	Example: `  pulsrag ask "Quels concerts à Orsay ce mois-ci ?"
  pulsrag ask --city Paris --city Sceaux "Une exposition pour enfants ?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringSliceVarP(&askCities, "city", "c", nil, "restrict to these cities")
	askCmd.Flags().BoolVar(&askAllDates, "all-dates", false, "include past events")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return notConfigured("answer service")
	}

	req := domain.NewAskRequest(strings.Join(args, " "))
	req.FutureOnly = !askAllDates
	if cmd.Flags().Changed("city") {
		req.AllowedCities = askCities
		if req.AllowedCities == nil {
			req.AllowedCities = []string{}
		}
	}

	ans, err := answerService.Ask(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	switch {
	case askJSON:
		return outputAskJSON(cmd, ans)
	case isTerminal(cmd.OutOrStdout()):
		outputAskPretty(cmd, ans)
	default:
		fmt.Fprintln(cmd.OutOrStdout(), ans.Text)
	}
	return nil
}

type askJSONOutput struct {
	ID        string            `json:"id"`
	Answer    string            `json:"answer"`
	Verdict   domain.Verdict    `json:"verdict"`
	Sources   []string          `json:"sources"`
	Citations []domain.Citation `json:"citations"`
	Relaxed   bool              `json:"relaxed"`
}

func outputAskJSON(cmd *cobra.Command, ans *domain.Answer) error {
	out := askJSONOutput{
		ID:        ans.ID,
		Answer:    ans.Text,
		Verdict:   ans.Verdict,
		Sources:   ans.Sources,
		Citations: ans.Citations,
		Relaxed:   ans.Relaxed,
	}
	if out.Sources == nil {
		out.Sources = []string{}
	}
	if out.Citations == nil {
		out.Citations = []domain.Citation{}
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

var (
	verdictStyles = map[domain.Verdict]lipgloss.Style{
		domain.VerdictOK:            lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
		domain.VerdictLowConfidence: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9E2AF")),
		domain.VerdictNotFound:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8")),
	}
	uidStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#29B6F6"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
)

func outputAskPretty(cmd *cobra.Command, ans *domain.Answer) {
	cmd.Println(verdictStyles[ans.Verdict].Render(ans.Verdict.Description()))
	cmd.Println()

	text := ans.Text
	if i := strings.LastIndex(text, "\n\nSources :"); i >= 0 {
		text = text[:i]
	}
	cmd.Println(text)

	if len(ans.Citations) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	seen := make(map[string]bool, len(ans.Citations))
	for _, c := range ans.Citations {
		md := c.Metadata
		if seen[md.UID] {
			continue
		}
		seen[md.UID] = true
		cmd.Printf("  %s  %s\n", uidStyle.Render(md.UID), mutedStyle.Render(citationLine(md)))
	}
}

func citationLine(md domain.EventMetadata) string {
	parts := make([]string, 0, 3)
	if md.FirstBeginDT != "" {
		parts = append(parts, md.FirstBeginDT)
	}
	if md.LocationCity != "" {
		parts = append(parts, md.LocationCity)
	}
	if md.OriginURL != "" {
		parts = append(parts, md.OriginURL)
	}
	return strings.Join(parts, "  ")
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	return nil
}
