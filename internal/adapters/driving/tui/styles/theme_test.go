package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	assert.NotEmpty(t, string(theme.Primary))
	assert.NotEmpty(t, string(theme.Secondary))
	assert.NotEmpty(t, string(theme.Foreground))
	assert.NotEmpty(t, string(theme.Muted))
	assert.NotEmpty(t, string(theme.Error))
	assert.NotEmpty(t, string(theme.Bar))
}

func TestDefaultTheme_StatusColoursAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	palette := []lipgloss.Color{theme.Primary, theme.Success, theme.Warning, theme.Error}

	seen := make(map[string]bool)
	for _, c := range palette {
		assert.False(t, seen[string(c)], "duplicate colour: %s", c)
		seen[string(c)] = true
	}
}

func TestNewStyles(t *testing.T) {
	t.Run("with theme", func(t *testing.T) {
		theme := DefaultTheme()
		s := NewStyles(theme)
		require.NotNil(t, s)
		assert.Equal(t, theme, s.Theme())
	})

	t.Run("nil theme uses default", func(t *testing.T) {
		s := NewStyles(nil)
		require.NotNil(t, s)
		assert.Equal(t, DefaultTheme().Primary, s.Theme().Primary)
	})
}

func TestStyles_Confidence(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, s.Success.GetForeground(), s.Confidence(0.9).GetForeground())
	assert.Equal(t, s.Success.GetForeground(), s.Confidence(HighConfidence).GetForeground())
	assert.Equal(t, s.Warning.GetForeground(), s.Confidence(0.5).GetForeground())
	assert.Equal(t, s.Error.GetForeground(), s.Confidence(0.1).GetForeground())
}

func TestStyles_RenderNonEmpty(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Title.Render("Insight"), "Insight")
	assert.Contains(t, s.Answer.Render("answer"), "answer")
	assert.Contains(t, s.Page.Render("p. 3"), "p. 3")
}
