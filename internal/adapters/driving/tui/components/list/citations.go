// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/styles"
	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// CitationList displays the events an answer was built from.
type CitationList struct {
	citations []domain.Citation
	selected  int
	styles    *styles.Styles
	width     int
	height    int
}

// NewCitationList creates an empty citation list.
func NewCitationList(s *styles.Styles) *CitationList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &CitationList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (c *CitationList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (c *CitationList) Update(msg tea.Msg) (*CitationList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			c.MoveUp()
		case "down", "j":
			c.MoveDown()
		}
	}
	return c, nil
}

// View renders the list.
func (c *CitationList) View() string {
	if len(c.citations) == 0 {
		return c.styles.Muted.Render("No sources")
	}

	lines := make([]string, 0, len(c.citations)+2)
	lines = append(lines, c.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(c.citations))), "")

	// Each citation takes three lines.
	visible := (c.height - 2) / 3
	if visible < 1 {
		visible = 1
	}
	start := 0
	if c.selected >= visible {
		start = c.selected - visible + 1
	}
	end := min(start+visible, len(c.citations))

	for i := start; i < end; i++ {
		lines = append(lines, c.renderCitation(i, &c.citations[i]))
	}
	return strings.Join(lines, "\n")
}

func (c *CitationList) renderCitation(index int, cit *domain.Citation) string {
	md := cit.Metadata

	indicator := "  "
	if index == c.selected {
		indicator = "> "
	}

	head := indicator + md.UID
	if place := placeLabel(md); place != "" {
		head += "  " + place
	}
	head = truncate(head, c.width-2)
	if index == c.selected {
		head = c.styles.Selected.Render(head)
	} else {
		head = c.styles.Source.Render(head)
	}

	when := md.FirstBeginDT
	if when == "" {
		when = "date inconnue"
	}
	detail := c.styles.Muted.Render(truncate("    "+when+"  "+md.OriginURL, c.width-2))

	excerpt := strings.Join(strings.Fields(cit.Excerpt), " ")
	body := c.styles.Normal.Render(truncate("    "+excerpt, c.width-2))

	return head + "\n" + detail + "\n" + body
}

func placeLabel(md domain.EventMetadata) string {
	switch {
	case md.LocationName != "" && md.LocationCity != "":
		return md.LocationName + ", " + md.LocationCity
	case md.LocationCity != "":
		return md.LocationCity
	default:
		return md.LocationName
	}
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	if max < 10 {
		max = 10
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// SetCitations replaces the list contents and resets the selection.
func (c *CitationList) SetCitations(citations []domain.Citation) {
	c.citations = citations
	c.selected = 0
}

// Citations returns the current citations.
func (c *CitationList) Citations() []domain.Citation {
	return c.citations
}

// Selected returns the index of the selected citation.
func (c *CitationList) Selected() int {
	return c.selected
}

// SelectedCitation returns the selected citation, or nil if the list is empty.
func (c *CitationList) SelectedCitation() *domain.Citation {
	if c.selected < 0 || c.selected >= len(c.citations) {
		return nil
	}
	return &c.citations[c.selected]
}

// MoveUp moves selection up.
func (c *CitationList) MoveUp() {
	if c.selected > 0 {
		c.selected--
	}
}

// MoveDown moves selection down.
func (c *CitationList) MoveDown() {
	if c.selected < len(c.citations)-1 {
		c.selected++
	}
}

// SetDimensions sets the component dimensions.
func (c *CitationList) SetDimensions(width, height int) {
	c.width = width
	c.height = height
}

// Count returns the number of citations.
func (c *CitationList) Count() int {
	return len(c.citations)
}

// IsEmpty reports whether the list is empty.
func (c *CitationList) IsEmpty() bool {
	return len(c.citations) == 0
}
