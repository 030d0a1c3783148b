// Package input provides text input components for the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/archivevault/internal/adapters/driving/tui/styles"
)

// maxHistory bounds the number of remembered queries.
const maxHistory = 50

// QueryInput wraps a bubbles textinput and remembers submitted queries.
type QueryInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int

	history []string
	// cursor indexes history while browsing; len(history) means the draft.
	cursor int
	draft  string
}

// NewQueryInput creates a new query input component.
func NewQueryInput(s *styles.Styles) *QueryInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Search paragraphs, fields, notes, attachments..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	return &QueryInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init initialises the input.
func (q *QueryInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages. Up and down browse the query history.
func (q *QueryInput) Update(msg tea.Msg) (*QueryInput, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only history keys
		switch key.Type {
		case tea.KeyUp:
			q.Previous()
			return q, nil
		case tea.KeyDown:
			q.Next()
			return q, nil
		}
	}

	var cmd tea.Cmd
	q.textinput, cmd = q.textinput.Update(msg)
	return q, cmd
}

// View renders the input.
func (q *QueryInput) View() string {
	label := q.styles.Title.Render("Search: ")
	field := q.styles.InputField.Render(q.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Submit returns the trimmed query and records it in the history.
// Repeating the latest query does not add a duplicate entry.
func (q *QueryInput) Submit() string {
	query := strings.TrimSpace(q.textinput.Value())
	if query != "" && (len(q.history) == 0 || q.history[len(q.history)-1] != query) {
		q.history = append(q.history, query)
		if len(q.history) > maxHistory {
			q.history = q.history[len(q.history)-maxHistory:]
		}
	}
	q.cursor = len(q.history)
	q.draft = ""
	return query
}

// Previous replaces the value with the previous history entry.
func (q *QueryInput) Previous() {
	if q.cursor == 0 {
		return
	}
	if q.cursor == len(q.history) {
		q.draft = q.textinput.Value()
	}
	q.cursor--
	q.setValue(q.history[q.cursor])
}

// Next moves forward in history, ending at the unsubmitted draft.
func (q *QueryInput) Next() {
	if q.cursor >= len(q.history) {
		return
	}
	q.cursor++
	if q.cursor == len(q.history) {
		q.setValue(q.draft)
		return
	}
	q.setValue(q.history[q.cursor])
}

func (q *QueryInput) setValue(v string) {
	q.textinput.SetValue(v)
	q.textinput.CursorEnd()
}

// History returns submitted queries, oldest first.
func (q *QueryInput) History() []string {
	return q.history
}

// Value returns the current input value.
func (q *QueryInput) Value() string {
	return q.textinput.Value()
}

// SetValue sets the input value.
func (q *QueryInput) SetValue(value string) {
	q.setValue(value)
}

// Focus sets focus on the input.
func (q *QueryInput) Focus() tea.Cmd {
	return q.textinput.Focus()
}

// Blur removes focus from the input.
func (q *QueryInput) Blur() {
	q.textinput.Blur()
}

// Focused returns whether the input is focused.
func (q *QueryInput) Focused() bool {
	return q.textinput.Focused()
}

// SetWidth sets the width of the input.
func (q *QueryInput) SetWidth(width int) {
	q.width = width
	// Account for label and padding
	q.textinput.Width = max(width-14, 20)
}

// Width returns the current width.
func (q *QueryInput) Width() int {
	return q.width
}

// Reset clears the input but keeps the history.
func (q *QueryInput) Reset() {
	q.textinput.Reset()
	q.cursor = len(q.history)
	q.draft = ""
}
