// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/insight/internal/core/domain"
)

// linesPerCitation is the rendered height of one citation.
const linesPerCitation = 2

// CitationList displays answer citations in a navigable list.
type CitationList struct {
	citations []domain.Citation
	selected  int
	styles    *styles.Styles
	width     int
	height    int
}

// NewCitationList creates a new citation list component.
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

// View renders the citations.
func (c *CitationList) View() string {
	if len(c.citations) == 0 {
		return c.styles.Muted.Render("No citations")
	}

	lines := make([]string, 0, len(c.citations)*linesPerCitation+2)
	lines = append(lines, c.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(c.citations))), "")

	visible := (c.height - 2) / linesPerCitation
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
	indicator := "  "
	if index == c.selected {
		indicator = "> "
	}

	name := truncate(cit.DocumentName, max(c.width-30, 10))
	page := fmt.Sprintf("p. %d", cit.PageNumber)
	score := fmt.Sprintf("%.2f", cit.RelevanceScore)

	var head string
	if index == c.selected {
		head = c.styles.Selected.Render(fmt.Sprintf("%s[%d] %s  %s  %s", indicator, index+1, name, page, score))
	} else {
		head = c.styles.Normal.Render(fmt.Sprintf("%s[%d] %s  ", indicator, index+1, name)) +
			c.styles.Page.Render(page) + "  " +
			c.styles.Muted.Render(score)
	}

	excerpt := strings.Join(strings.Fields(cit.TextExcerpt), " ")
	excerpt = truncate(excerpt, max(c.width-6, 20))

	return head + "\n" + c.styles.Muted.Render("    "+excerpt)
}

// truncate shortens s to n runes with a trailing ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
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

// SetSelected sets the selected index.
func (c *CitationList) SetSelected(index int) {
	if index >= 0 && index < len(c.citations) {
		c.selected = index
	}
}

// SelectedCitation returns the selected citation, or nil if none.
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
