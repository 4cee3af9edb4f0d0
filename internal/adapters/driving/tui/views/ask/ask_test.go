package ask

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/insight/internal/core/domain"
)

// MockQueryService implements driving.QueryService for testing.
type MockQueryService struct {
	AskFunc func(ctx context.Context, question string) (*domain.Answer, error)
}

func (m *MockQueryService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, question)
	}
	return testAnswer(), nil
}

// MockAnswerActionService implements driving.AnswerActionService for testing.
type MockAnswerActionService struct {
	CopyAnswerFunc   func(ctx context.Context, answer *domain.Answer) error
	OpenDocumentFunc func(ctx context.Context, documentID string) error
}

func (m *MockAnswerActionService) CopyAnswer(ctx context.Context, answer *domain.Answer) error {
	if m.CopyAnswerFunc != nil {
		return m.CopyAnswerFunc(ctx, answer)
	}
	return nil
}

func (m *MockAnswerActionService) OpenDocument(ctx context.Context, documentID string) error {
	if m.OpenDocumentFunc != nil {
		return m.OpenDocumentFunc(ctx, documentID)
	}
	return nil
}

func testAnswer() *domain.Answer {
	return &domain.Answer{
		Answer:     "Refunds are issued within 14 days.",
		Confidence: 0.85,
		Citations: []domain.Citation{
			{DocumentName: "terms.pdf", PageNumber: 3, TextExcerpt: "within 14 days", RelevanceScore: 0.9},
			{DocumentName: "faq.pdf", PageNumber: 1, TextExcerpt: "refund policy", RelevanceScore: 0.6},
		},
		ProcessingTimeMS: 250,
	}
}

func newReadyView(query *MockQueryService, actions *MockAnswerActionService) *View {
	var v *View
	if actions == nil {
		v = NewView(styles.DefaultStyles(), keymap.DefaultKeyMap(), query, nil)
	} else {
		v = NewView(styles.DefaultStyles(), keymap.DefaultKeyMap(), query, actions)
	}
	v.SetDimensions(100, 40)
	return v
}

func typeText(v *View, text string) {
	for _, r := range text {
		v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// runBatch executes cmd and any nested batch, returning the first message of type T.
func findMsg[T any](t *testing.T, cmd tea.Cmd) (T, bool) {
	t.Helper()
	var zero T
	if cmd == nil {
		return zero, false
	}
	msg := cmd()
	if found, ok := msg.(T); ok {
		return found, true
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if found, ok := findMsg[T](t, c); ok {
				return found, true
			}
		}
	}
	return zero, false
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil, nil)

	require.NotNil(t, v)
	assert.NotNil(t, v.styles)
	assert.NotNil(t, v.keymap)
	assert.False(t, v.Ready())
	assert.True(t, v.InputFocused())
	assert.Nil(t, v.Answer())
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_WithContext(t *testing.T) {
	v := NewView(nil, nil, nil, nil)
	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("k"), "v")

	assert.Equal(t, v, v.WithContext(ctx))
	assert.Equal(t, ctx, v.ctx)
}

func TestView_Init(t *testing.T) {
	assert.NotNil(t, NewView(nil, nil, nil, nil).Init())
}

func TestView_WindowSize(t *testing.T) {
	v := NewView(nil, nil, nil, nil)

	v.Update(tea.WindowSizeMsg{Width: 120, Height: 50})

	assert.True(t, v.Ready())
	assert.Equal(t, 118, v.answer.Width)
	assert.Equal(t, 20, v.answer.Height)
}

func TestView_Typing(t *testing.T) {
	v := newReadyView(&MockQueryService{}, nil)

	typeText(v, "refunds?")

	assert.Equal(t, "refunds?", v.Input())
}

func TestView_EmptyQuestionIgnored(t *testing.T) {
	v := newReadyView(&MockQueryService{}, nil)
	typeText(v, "   ")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, v.Pending())
	assert.True(t, v.InputFocused())
}

func TestView_SubmitQuestion(t *testing.T) {
	var asked string
	query := &MockQueryService{
		AskFunc: func(_ context.Context, question string) (*domain.Answer, error) {
			asked = question
			return testAnswer(), nil
		},
	}
	v := newReadyView(query, nil)
	typeText(v, " how are refunds handled? ")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.True(t, v.Pending())
	assert.False(t, v.InputFocused())
	assert.Equal(t, "how are refunds handled?", v.Question())

	done, ok := findMsg[messages.AnswerCompleted](t, cmd)
	require.True(t, ok)
	assert.Equal(t, "how are refunds handled?", asked)

	v.Update(done)

	assert.False(t, v.Pending())
	require.NotNil(t, v.Answer())
	assert.Equal(t, 2, v.citations.Count())
	view := v.View()
	assert.Contains(t, view, "Refunds are issued within 14 days.")
	assert.Contains(t, view, "Confidence: 85%")
	assert.Contains(t, view, "terms.pdf")
	assert.Contains(t, view, "Answered in 250 ms")
}

func TestView_KeysIgnoredWhilePending(t *testing.T) {
	v := newReadyView(&MockQueryService{}, nil)
	typeText(v, "q")
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, v.Pending())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})

	assert.Nil(t, cmd)
	assert.False(t, v.InputFocused())
}

func TestView_AnswerError(t *testing.T) {
	v := newReadyView(&MockQueryService{}, nil)
	typeText(v, "anything")
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	v.Update(messages.AnswerCompleted{Question: "anything", Err: domain.ErrNoDocuments})

	assert.False(t, v.Pending())
	assert.ErrorIs(t, v.Err(), domain.ErrEmptyResult)
	assert.True(t, v.InputFocused())
	assert.Contains(t, v.View(), "Error:")
}

func TestView_NoQueryService(t *testing.T) {
	v := newReadyView(nil, nil)
	v.queryService = nil
	typeText(v, "hello")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	done, ok := findMsg[messages.AnswerCompleted](t, cmd)

	require.True(t, ok)
	assert.ErrorIs(t, done.Err, ErrNoQueryService)
}

func TestView_CitationNavigation(t *testing.T) {
	v := newReadyView(&MockQueryService{}, nil)
	v.Update(messages.AnswerCompleted{Question: "q", Answer: testAnswer()})

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, v.citations.Selected())

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 0, v.citations.Selected())
}

func TestView_AnswerReleasesInputFocus(t *testing.T) {
	v := newReadyView(&MockQueryService{}, nil)
	require.True(t, v.InputFocused())

	v.Update(messages.AnswerCompleted{Question: "q", Answer: testAnswer()})

	assert.False(t, v.InputFocused())
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Equal(t, "", v.Input())
}

func TestView_NewQuestion(t *testing.T) {
	v := newReadyView(&MockQueryService{}, nil)
	v.Update(messages.AnswerCompleted{Question: "q", Answer: testAnswer()})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})

	_ = cmd
	assert.True(t, v.InputFocused())
	assert.Equal(t, "", v.Input())
}

func TestView_CopyAnswer(t *testing.T) {
	t.Run("copies the current answer", func(t *testing.T) {
		var copied *domain.Answer
		actions := &MockAnswerActionService{
			CopyAnswerFunc: func(_ context.Context, answer *domain.Answer) error {
				copied = answer
				return nil
			},
		}
		v := newReadyView(&MockQueryService{}, actions)
		v.Update(messages.AnswerCompleted{Question: "q", Answer: testAnswer()})

		v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})

		require.NotNil(t, copied)
		assert.Equal(t, "Copied to clipboard", v.StatusMessage())
	})

	t.Run("reports copy failures", func(t *testing.T) {
		actions := &MockAnswerActionService{
			CopyAnswerFunc: func(context.Context, *domain.Answer) error {
				return errors.New("no clipboard")
			},
		}
		v := newReadyView(&MockQueryService{}, actions)
		v.Update(messages.AnswerCompleted{Question: "q", Answer: testAnswer()})

		v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})

		assert.Equal(t, "Copy: no clipboard", v.StatusMessage())
	})

	t.Run("without action service", func(t *testing.T) {
		v := newReadyView(&MockQueryService{}, nil)
		v.Update(messages.AnswerCompleted{Question: "q", Answer: testAnswer()})

		v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})

		assert.Equal(t, "Copy not available", v.StatusMessage())
	})
}

func TestView_EscGoesToMenu(t *testing.T) {
	v := newReadyView(&MockQueryService{}, nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_ErrorOccurred(t *testing.T) {
	v := newReadyView(&MockQueryService{}, nil)

	v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, v.Err(), "boom")
	assert.Equal(t, "boom", v.StatusMessage())
}

func TestView_Reset(t *testing.T) {
	v := newReadyView(&MockQueryService{}, nil)
	v.Update(messages.AnswerCompleted{Question: "q", Answer: testAnswer()})

	v.Reset()

	assert.Nil(t, v.Answer())
	assert.Equal(t, "", v.Question())
	assert.True(t, v.InputFocused())
	assert.Equal(t, 0, v.citations.Count())
	assert.NoError(t, v.Err())
}
