package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivevault/internal/adapters/driving/tui"
	"github.com/custodia-labs/archivevault/internal/adapters/driving/watcher"
	"github.com/custodia-labs/archivevault/internal/logger"
)

var tuiWatchDir string

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for archivevault.

The TUI searches the library with paged, highlighted results and opens the
archive a result belongs to at the matching paragraph.

With --watch, archives dropped into the directory are imported in the
background while the TUI runs.

Controls:
  ↑/k, ↓/j - Navigate results
  Enter    - Search / Open archive
  n, p     - Next / previous page
  /        - New search
  Esc      - Back
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiWatchDir, "watch", "", "import archives dropped into this directory while running")
	rootCmd.AddCommand(tuiCmd)
}

// newTUIPorts builds the TUI ports from the configured services.
func newTUIPorts() *tui.Ports {
	return tui.NewPorts(searchService, archiveService, settingsService)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(newTUIPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	if tuiWatchDir != "" {
		stop, err := startBackgroundWatch(ctx, tuiWatchDir)
		if err != nil {
			return err
		}
		defer stop()
	}

	if err := app.WithContext(ctx).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// startBackgroundWatch runs a watcher until the returned stop is called.
// Results go to the log since the terminal belongs to the TUI.
func startBackgroundWatch(ctx context.Context, dir string) (func(), error) {
	if importService == nil {
		return nil, errors.New("import service not configured")
	}

	w, err := watcher.New(dir, importService)
	if err != nil {
		return nil, fmt.Errorf("failed to watch: %w", err)
	}

	go func() {
		if err := w.Start(ctx); err != nil {
			logger.Warn("watcher stopped: %v", err)
		}
	}()

	return func() {
		if err := w.Stop(); err != nil {
			logger.Warn("watcher stop error: %v", err)
		}
	}, nil
}
