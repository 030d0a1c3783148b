package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivevault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/archivevault/internal/core/domain"
)

func newTestPorts() *Ports {
	return &Ports{
		Search: &MockSearchService{
			SearchFunc: func(_ context.Context, req domain.SearchRequest) (*domain.SearchPage, error) {
				return &domain.SearchPage{
					Items: []domain.Hit{
						&domain.BlockHit{ArchiveID: "a1", BlockID: "p:000001", BlockText: "first paragraph"},
						&domain.AttachmentHit{ArchiveID: "a2", FileID: "f1", DisplayName: "pier.jpg"},
					},
					Offset: req.Offset,
					Limit:  50,
				}, nil
			},
		},
		Archive:  &MockArchiveService{},
		Settings: &MockSettingsService{Settings: domain.DefaultSettings("/lib")},
	}
}

func newTestApp(t *testing.T, ports *Ports) *App {
	t.Helper()
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(120, 40)
	return app
}

// send delivers msg and then follows the chain of app messages its commands
// produce. Cursor blinks and other bubbletea messages end the chain.
func send(app *App, msg tea.Msg) {
	for msg != nil {
		_, cmd := app.Update(msg)
		if cmd == nil {
			return
		}
		msg = cmd()
		switch msg.(type) {
		case messages.SearchCompleted, messages.HitSelected, messages.ArchiveLoaded,
			messages.ViewChanged, messages.ErrorOccurred:
		default:
			return
		}
	}
}

func typeQuery(app *App, query string) {
	app.SearchView().SetQuery(query)
	send(app, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts())

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewSearch, app.CurrentView())
	assert.False(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingSearchService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	ctx := context.TODO()
	result := app.WithContext(ctx)

	assert.Equal(t, app, result)
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_Init(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.NotNil(t, app.Init())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.True(t, app.Ready())
	assert.Equal(t, 100, app.SearchView().Width())
}

func TestApp_View_NotReady(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_CtrlCQuits(t *testing.T) {
	app := newTestApp(t, newTestPorts())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_SearchFlow(t *testing.T) {
	app := newTestApp(t, newTestPorts())

	typeQuery(app, "paragraph")

	assert.Equal(t, "paragraph", app.SearchView().Query())
	assert.Len(t, app.SearchView().Hits(), 2)
	assert.NoError(t, app.Err())
	assert.Contains(t, app.View(), "paragraph p:000001")
}

func TestApp_SearchUsesConfiguredPageSize(t *testing.T) {
	var got domain.SearchRequest
	ports := newTestPorts()
	ports.Settings = &MockSettingsService{Settings: domain.Settings{SearchLimit: 20}}
	ports.Search = &MockSearchService{
		SearchFunc: func(_ context.Context, req domain.SearchRequest) (*domain.SearchPage, error) {
			got = req
			return &domain.SearchPage{Items: []domain.Hit{}}, nil
		},
	}
	app := newTestApp(t, ports)

	typeQuery(app, "x")

	assert.Equal(t, 20, got.Limit)
}

func TestApp_SearchError(t *testing.T) {
	ports := newTestPorts()
	ports.Search = &MockSearchService{
		SearchFunc: func(context.Context, domain.SearchRequest) (*domain.SearchPage, error) {
			return nil, errors.New("index locked")
		},
	}
	app := newTestApp(t, ports)

	typeQuery(app, "x")

	assert.EqualError(t, app.Err(), "index locked")
}

func TestApp_OpenArchiveAndBack(t *testing.T) {
	app := newTestApp(t, newTestPorts())
	typeQuery(app, "paragraph")

	send(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, messages.ViewArchive, app.CurrentView())
	require.NotNil(t, app.ArchiveView().Detail())
	assert.Equal(t, "a1", app.ArchiveView().Detail().Archive.ID)
	assert.Contains(t, app.View(), "a1.zip")
	assert.Contains(t, app.View(), "▶ p:000001")

	send(app, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, messages.ViewSearch, app.CurrentView())
	assert.Len(t, app.SearchView().Hits(), 2)
}

func TestApp_OpenArchive_NotFound(t *testing.T) {
	ports := newTestPorts()
	ports.Archive = &MockArchiveService{
		GetFunc: func(context.Context, string) (*domain.ArchiveDetail, error) {
			return nil, domain.ErrNotFound
		},
	}
	app := newTestApp(t, ports)
	typeQuery(app, "paragraph")

	send(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, messages.ViewArchive, app.CurrentView())
	assert.ErrorIs(t, app.Err(), domain.ErrNotFound)
}

func TestApp_OpenWithoutArchiveService(t *testing.T) {
	ports := newTestPorts()
	ports.Archive = nil
	app := newTestApp(t, ports)
	typeQuery(app, "paragraph")

	send(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, messages.ViewSearch, app.CurrentView())
	assert.Contains(t, app.View(), "Archive browsing is not available")
}

func TestApp_Help(t *testing.T) {
	app := newTestApp(t, newTestPorts())
	typeQuery(app, "paragraph")

	send(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.Contains(t, app.View(), "Next / previous page")

	send(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewSearch, app.CurrentView())
}

func TestApp_HelpQuits(t *testing.T) {
	app := newTestApp(t, newTestPorts())
	app.Update(messages.ViewChanged{View: messages.ViewHelp})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_QuitMessage(t *testing.T) {
	app := newTestApp(t, newTestPorts())

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t, newTestPorts())

	app.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
	assert.Contains(t, app.View(), "boom")
}
