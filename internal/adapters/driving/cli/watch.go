package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivevault/internal/adapters/driving/watcher"
	"github.com/custodia-labs/archivevault/internal/core/domain"
)

var (
	watchDebounce    int
	watchInitialScan bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Import ZIP archives dropped into a directory",
	Long: `Watches a directory (and its subdirectories) and imports every .zip
file that appears or changes, once it has been quiet for the debounce
interval. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchDebounce, "debounce", domain.DefaultWatchDebounceSec, "seconds a file must be quiet before import")
	watchCmd.Flags().BoolVar(&watchInitialScan, "scan", false, "import archives already in the directory on start")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if importService == nil {
		return errors.New("import service not configured")
	}

	opts := []watcher.Option{
		watcher.WithDebounce(time.Duration(watchDebounce) * time.Second),
		watcher.WithReporter(func(summary *domain.ImportSummary, err error) {
			if summary != nil {
				printImportSummary(cmd, summary)
			}
			if err != nil {
				cmd.PrintErrf("import error: %v\n", err)
			}
		}),
	}
	if watchInitialScan {
		opts = append(opts, watcher.WithInitialScan())
	}

	w, err := watcher.New(args[0], importService, opts...)
	if err != nil {
		return fmt.Errorf("failed to watch: %w", err)
	}

	cmd.Printf("Watching %s. Press Ctrl+C to stop.\n", args[0])
	return w.Start(commandContext(cmd))
}
