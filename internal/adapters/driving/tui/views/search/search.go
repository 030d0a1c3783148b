// Package search provides the main search view for the TUI.
package search

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/archivevault/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/archivevault/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/archivevault/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/archivevault/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/archivevault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/archivevault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driving"
)

// View represents the search view with input, paged results and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	statusbar *status.Bar

	searchService driving.SearchService
	ctx           context.Context

	// limit is the page size; zero uses the service default.
	limit int
	// query is the last submitted query; pages are fetched for it.
	query   string
	offset  int
	hasMore bool
	// pageLimit is the page size the service applied to the last page.
	pageLimit int

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = input mode (typing), false = results mode (navigating)
}

// NewView creates a new search view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searchService driving.SearchService,
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
		input:         input.NewQueryInput(s),
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithLimit sets the page size.
func (v *View) WithLimit(limit int) *View {
	v.limit = limit
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		return v.handleInputKey(msg)
	}

	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }

	case keymap.Matches(keyStr, v.keymap.Help):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewHelp} }

	case keymap.Matches(keyStr, v.keymap.NewSearch), keymap.Matches(keyStr, v.keymap.Back):
		v.focusInput = true
		return v, v.input.Focus()

	case keymap.Matches(keyStr, v.keymap.Open):
		hit := v.list.SelectedHit()
		if hit == nil {
			return v, nil
		}
		return v, func() tea.Msg { return messages.HitSelected{Hit: hit} }

	case keymap.Matches(keyStr, v.keymap.NextPage):
		if !v.hasMore {
			return v, nil
		}
		v.statusbar.SetState(status.StateSearching)
		return v, v.performSearch(v.query, v.offset+len(v.list.Hits()))

	case keymap.Matches(keyStr, v.keymap.PrevPage):
		if v.offset == 0 {
			return v, nil
		}
		v.statusbar.SetState(status.StateSearching)
		return v, v.performSearch(v.query, max(v.offset-v.pageSize(), 0))

	case keymap.Matches(keyStr, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(keyStr, v.keymap.Down):
		v.list.MoveDown()
	}
	return v, nil
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEnter:
		query := v.input.Submit()
		if query == "" {
			return v, nil
		}
		v.query = query
		v.statusbar.SetState(status.StateSearching)
		return v, v.performSearch(query, 0)

	case tea.KeyEsc:
		// Back to the current results, if any.
		if len(v.list.Hits()) > 0 {
			v.focusInput = false
			v.input.Blur()
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// pageSize is the step used for paging back.
func (v *View) pageSize() int {
	switch {
	case v.pageLimit > 0:
		return v.pageLimit
	case v.limit > 0:
		return v.limit
	default:
		return domain.DefaultSearchLimit
	}
}

// performSearch fetches one page of results for query.
func (v *View) performSearch(query string, offset int) tea.Cmd {
	svc, ctx, limit := v.searchService, v.ctx, v.limit
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}

		page, err := svc.Search(ctx, domain.SearchRequest{
			Query:  query,
			Limit:  limit,
			Offset: offset,
		})
		return messages.SearchCompleted{Query: query, Page: page, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	// Results for a query the user has since replaced.
	if msg.Query != v.query {
		return
	}
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	var page domain.SearchPage
	if msg.Page != nil {
		page = *msg.Page
	}
	v.offset = page.Offset
	v.hasMore = page.HasMore
	v.pageLimit = page.Limit
	v.list.SetPage(page.Items, page.Offset)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetPage(status.Page{Offset: page.Offset, Count: len(page.Items), HasMore: page.HasMore})

	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("ArchiveVault"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // header, input and status
	v.statusbar.SetWidth(width)
}

// SetStatus shows a message in the status bar.
func (v *View) SetStatus(message string) {
	v.statusbar.SetMessage(message)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the last submitted query.
func (v *View) Query() string {
	return v.query
}

// SetQuery sets the text in the input.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Hits returns the hits on the current page.
func (v *View) Hits() []domain.Hit {
	return v.list.Hits()
}

// Offset returns the offset of the current page.
func (v *View) Offset() int {
	return v.offset
}

// HasMore reports whether a next page exists.
func (v *View) HasMore() bool {
	return v.hasMore
}

// SelectedIndex returns the index of the selected hit.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// SelectedHit returns the selected hit.
func (v *View) SelectedHit() domain.Hit {
	return v.list.SelectedHit()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// ClearError clears the current error.
func (v *View) ClearError() {
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
}

// Reset returns the view to an empty input.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.Reset()
	v.list.Clear()
	v.query = ""
	v.offset = 0
	v.hasMore = false
	v.pageLimit = 0
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
