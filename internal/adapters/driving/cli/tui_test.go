package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTUICmd_Metadata(t *testing.T) {
	assert.Equal(t, "tui", tuiCmd.Use)
	assert.Equal(t, "Launch the interactive terminal UI", tuiCmd.Short)
	assert.Contains(t, tuiCmd.Long, "interactive terminal user interface")
	assert.Contains(t, tuiCmd.Long, "Controls:")
	assert.NotNil(t, tuiCmd.Flags().Lookup("watch"))
}

func TestTUICmd_Help(t *testing.T) {
	out, err := execute(t, "tui", "--help")

	require.NoError(t, err)
	assert.Contains(t, out, "Next / previous page")
	assert.Contains(t, out, "--watch")
}

func TestNewTUIPorts(t *testing.T) {
	m := setupTestServices(t)

	ports := newTUIPorts()

	require.NoError(t, ports.Validate())
	assert.Equal(t, m.search, ports.Search)
	assert.Equal(t, m.archive, ports.Archive)
	assert.Equal(t, m.settings, ports.Settings)
	assert.Equal(t, 50, ports.PageSize())
}

func TestNewTUIPorts_NoSearch(t *testing.T) {
	clearServices(t)

	assert.Error(t, newTUIPorts().Validate())
}

func TestTUICmd_NoSearchService(t *testing.T) {
	clearServices(t)

	_, err := execute(t, "tui")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create TUI")
}
