package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/archivevault/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/archivevault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/archivevault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/archivevault/internal/adapters/driving/tui/views/archive"
	"github.com/custodia-labs/archivevault/internal/adapters/driving/tui/views/search"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	searchView  *search.View
	archiveView *archive.View

	// currentView tracks which view is active.
	currentView messages.ViewType
	// previousView is where help returns to.
	previousView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		searchView:  search.NewView(s, km, ports.Search).WithLimit(ports.PageSize()),
		archiveView: archive.NewView(s, km, ports.Archive).WithLocation(ports.Location()),
		currentView: messages.ViewSearch,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.archiveView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("archivevault"),
		a.searchView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.handleKey(msg)

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.HitSelected:
		if a.ports.Archive == nil {
			a.searchView.SetStatus("Archive browsing is not available")
			return a, nil
		}
		a.currentView = messages.ViewArchive
		return a, a.archiveView.Open(msg.Hit)

	case messages.ArchiveLoaded:
		a.archiveView, cmd = a.archiveView.Update(msg)
		if msg.Err != nil {
			a.err = msg.Err
		}
		return a, cmd

	case messages.ViewChanged:
		if msg.View == messages.ViewHelp {
			a.previousView = a.currentView
		}
		a.currentView = msg.View
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewSearch {
			a.searchView, cmd = a.searchView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (cursor blink, etc.) to the active view
	switch a.currentView {
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewArchive:
		a.archiveView, cmd = a.archiveView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch a.currentView {
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewArchive:
		a.archiveView, cmd = a.archiveView.Update(msg)
	case messages.ViewHelp:
		switch {
		case keymap.Matches(msg.String(), a.keymap.Back), keymap.Matches(msg.String(), a.keymap.Help):
			a.currentView = a.previousView
		case msg.String() == "q":
			return a, tea.Quit
		}
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewArchive:
		return a.archiveView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.searchView.View()
	}
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Search:
  (type)      Enter a query
  ↑/↓         Recall earlier queries
  enter       Search
  esc         Back to results

Results:
  j/k, ↑/↓    Move selection
  enter       Open the archive
  n / p       Next / previous page
  /           New search
  q           Quit

Archive:
  j/k, ↑/↓    Scroll
  pgup/pgdn   Scroll a page
  esc         Back to results

` + a.styles.Help.Render("[esc] back  [ctrl+c] quit")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// SearchView returns the search view.
func (a *App) SearchView() *search.View {
	return a.searchView
}

// ArchiveView returns the archive view.
func (a *App) ArchiveView() *archive.View {
	return a.archiveView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and its views.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.searchView.SetDimensions(width, height)
	a.archiveView.SetDimensions(width, height)
}
