package menu

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/insight/internal/core/domain"
)

func TestNewView(t *testing.T) {
	view := NewView(styles.DefaultStyles())

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	require.Len(t, view.Items(), 5)
	assert.Equal(t, messages.ViewAsk, view.Items()[0].View)
	assert.True(t, view.Items()[4].Quit)
	assert.Equal(t, 0, view.Selected())
	assert.Nil(t, view.Init())
}

func TestNewView_NilStyles(t *testing.T) {
	view := NewView(nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
}

func TestView_NotReady(t *testing.T) {
	view := NewView(nil)

	assert.Equal(t, "Initialising...", view.View())
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(nil)

	updated, cmd := view.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	assert.Equal(t, view, updated)
	assert.Nil(t, cmd)
	assert.True(t, view.ready)
	assert.Equal(t, 100, view.width)
	assert.Equal(t, 50, view.height)
}

func TestView_Navigation(t *testing.T) {
	view := NewView(nil)

	view.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, view.Selected(), "up at top stays put")

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, view.Selected())

	for range 10 {
		view.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 4, view.Selected(), "down at bottom stays put")

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 3, view.Selected())
}

func TestView_EnterChangesView(t *testing.T) {
	tests := []struct {
		moves int
		want  messages.ViewType
	}{
		{0, messages.ViewAsk},
		{1, messages.ViewDocuments},
		{2, messages.ViewSettings},
		{3, messages.ViewHelp},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			view := NewView(nil)
			for range tt.moves {
				view.Update(tea.KeyMsg{Type: tea.KeyDown})
			}

			_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

			require.NotNil(t, cmd)
			assert.Equal(t, messages.ViewChanged{View: tt.want}, cmd())
		})
	}
}

func TestView_QuitItem(t *testing.T) {
	view := NewView(nil)
	for range 4 {
		view.Update(tea.KeyMsg{Type: tea.KeyDown})
	}

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_QKeyQuits(t *testing.T) {
	view := NewView(nil)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_Render(t *testing.T) {
	view := NewView(nil)
	view.SetDimensions(80, 24)

	out := view.View()

	assert.Contains(t, out, "Insight")
	assert.Contains(t, out, "Ask your PDFs")
	assert.Contains(t, out, "> ")
	assert.Contains(t, out, "ask a question about your documents")
	assert.Contains(t, out, "Documents")
	assert.NotContains(t, out, "No documents ingested yet.")
}

func TestView_EmptyLibraryHint(t *testing.T) {
	view := NewView(nil)
	view.SetDimensions(80, 24)

	view.Update(messages.DocumentsLoaded{Documents: []domain.Document{}})
	assert.Contains(t, view.View(), "No documents ingested yet.")

	view.Update(messages.DocumentsLoaded{Documents: []domain.Document{{ID: "a"}}})
	assert.NotContains(t, view.View(), "No documents ingested yet.")

	view.Update(messages.DocumentsLoaded{Err: errors.New("boom")})
	assert.NotContains(t, view.View(), "No documents ingested yet.")
}
