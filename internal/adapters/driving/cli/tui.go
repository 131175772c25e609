package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

Ask questions, browse the cited events, review past questions and
rebuild the index with keyboard navigation.

Controls:
  Enter    - Ask / Select
  Tab      - Cycle city filter
  Ctrl+F   - Toggle upcoming events only
  ↑/k, ↓/j - Navigate sources
  n        - New question
  Esc      - Back
  ?        - Toggle help
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// buildTUIPorts collects the services the TUI drives.
func buildTUIPorts() *tui.Ports {
	return tui.NewPorts(answerService, rebuildService, historyService)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if answerService == nil {
		return notConfigured("answer service")
	}

	app, err := tui.NewApp(buildTUIPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	startWatcher(cmd.Context())
	defer logger.Silence()()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
