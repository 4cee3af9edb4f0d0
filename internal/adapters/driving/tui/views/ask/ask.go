// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
)

// View shows a question input, the answer in a scrollable viewport and
// the cited sources.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	answer    viewport.Model
	citations *list.CitationList
	statusbar *status.Bar

	queryService  driving.QueryService
	actionService driving.AnswerActionService
	ctx           context.Context

	current    *domain.Answer
	question   string
	width      int
	height     int
	ready      bool
	pending    bool
	err        error
	focusInput bool
}

// NewView creates a new ask view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	queryService driving.QueryService,
	actionService driving.AnswerActionService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQuestionInput(s),
		answer:        viewport.New(80, 6),
		citations:     list.NewCitationList(s),
		statusbar:     status.NewBar(s, km),
		queryService:  queryService,
		actionService: actionService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context used for queries.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.statusbar, cmd = v.statusbar.Update(msg)
	cmds = append(cmds, cmd)
	v.input, cmd = v.input.Update(msg)
	cmds = append(cmds, cmd)
	return v, tea.Batch(cmds...)
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.pending {
		return v, nil
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			return v, v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.NewQuestion):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case keymap.Matches(msg.String(), v.keymap.Up):
		v.citations.MoveUp()
	case keymap.Matches(msg.String(), v.keymap.Down):
		v.citations.MoveDown()
	case keymap.Matches(msg.String(), v.keymap.Copy):
		v.copyAnswer()
	case msg.Type == tea.KeyPgUp, msg.Type == tea.KeyPgDown:
		var cmd tea.Cmd
		v.answer, cmd = v.answer.Update(msg)
		return v, cmd
	}
	return v, nil
}

// submit validates the typed question and starts the query.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" {
		return nil
	}
	v.question = question
	v.pending = true
	v.err = nil
	v.focusInput = false
	v.input.Blur()
	return tea.Batch(v.statusbar.StartThinking(), v.ask(question))
}

func (v *View) ask(question string) tea.Cmd {
	return func() tea.Msg {
		if v.queryService == nil {
			return messages.AnswerCompleted{Question: question, Err: ErrNoQueryService}
		}
		answer, err := v.queryService.Ask(v.ctx, question)
		return messages.AnswerCompleted{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	v.pending = false
	if msg.Err != nil {
		v.setError(msg.Err)
		v.focusInput = true
		v.input.Focus()
		return
	}

	v.err = nil
	v.focusInput = false
	v.input.Blur()
	v.current = msg.Answer
	v.citations.SetCitations(msg.Answer.Citations)
	v.answer.SetContent(v.renderAnswer())
	v.answer.GotoTop()
	v.statusbar.SetMessage("")
	v.statusbar.SetElapsed(msg.Answer.ProcessingTimeMS)
	v.statusbar.SetState(status.StateAnswered)
}

func (v *View) setError(err error) {
	v.pending = false
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) copyAnswer() {
	if v.current == nil {
		return
	}
	if v.actionService == nil {
		v.statusbar.SetMessage("Copy not available")
		return
	}
	if err := v.actionService.CopyAnswer(v.ctx, v.current); err != nil {
		v.statusbar.SetMessage("Copy: " + err.Error())
		return
	}
	v.statusbar.SetMessage("Copied to clipboard")
}

// renderAnswer formats the answer text with its confidence for the viewport.
func (v *View) renderAnswer() string {
	if v.current == nil {
		return ""
	}
	width := max(v.width-4, 20)
	body := lipgloss.NewStyle().Width(width).Render(v.current.Answer)
	conf := v.styles.Confidence(v.current.Confidence).
		Render(fmt.Sprintf("Confidence: %.0f%%", v.current.Confidence*100))
	return body + "\n\n" + conf
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("Insight"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.current != nil {
		sections = append(sections,
			v.styles.Muted.Render("Q: "+v.question),
			v.styles.Answer.Render(v.answer.View()),
			"",
			v.citations.View(),
		)
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions and splits the height between
// the answer and the citation list.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)

	body := max(height-10, 4)
	v.answer.Width = max(width-2, 10)
	v.answer.Height = body / 2
	v.citations.SetDimensions(width, body-body/2)
	if v.current != nil {
		v.answer.SetContent(v.renderAnswer())
	}
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Question returns the last submitted question.
func (v *View) Question() string {
	return v.question
}

// Input returns the text currently typed.
func (v *View) Input() string {
	return v.input.Value()
}

// Answer returns the last answer, if any.
func (v *View) Answer() *domain.Answer {
	return v.current
}

// Pending reports whether a query is in flight.
func (v *View) Pending() bool {
	return v.pending
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// StatusMessage returns the status bar message.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// Reset returns the view to an empty question.
func (v *View) Reset() {
	v.focusInput = true
	v.pending = false
	v.input.Focus()
	v.input.SetValue("")
	v.current = nil
	v.question = ""
	v.citations.SetCitations(nil)
	v.answer.SetContent("")
	v.err = nil
	v.statusbar.Clear()
}
