// Package cli provides the cobra command tree for archivevault.
//
// Commands drive the core through the package-level service variables.
// cmd/archivevault installs a Bootstrap that opens the library once global
// flags are parsed; tests assign the variables directly.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivevault/internal/core/ports/driving"
	"github.com/custodia-labs/archivevault/internal/logger"
)

// version is set via ldflags during build.
var version = "dev"

// Services wired by the bootstrap.
var (
	searchService     driving.SearchService
	importService     driving.ImportService
	archiveService    driving.ArchiveService
	annotationService driving.AnnotationService
	indexService      driving.IndexService
	settingsService   driving.SettingsService
)

// Services bundles the core services the commands drive.
type Services struct {
	Search     driving.SearchService
	Import     driving.ImportService
	Archive    driving.ArchiveService
	Annotation driving.AnnotationService
	Index      driving.IndexService
	Settings   driving.SettingsService
}

// Options carries the global flags to the bootstrap.
type Options struct {
	ConfigDir   string
	LibraryRoot string
	Verbose     bool
}

// Bootstrap opens the library and builds the services. The returned
// cleanup runs once the command has finished.
type Bootstrap func(ctx context.Context, opts Options) (*Services, func(), error)

var (
	bootstrap Bootstrap
	cleanup   func()
	globals   Options
)

var rootCmd = &cobra.Command{
	Use:   "archivevault",
	Short: "Import and search instruction archives",
	Long: `archivevault imports ZIP archives that bundle an instruction document
(.docx) with its attachments, extracts the instruction's fields and
paragraphs, and serves ranked full-text search over paragraphs, fields,
attachment names and annotations.`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globals.ConfigDir, "config-dir", "", "configuration directory (default ~/.archivevault)")
	flags.StringVar(&globals.LibraryRoot, "library", "", "library root, overriding the configured one")
	flags.BoolVarP(&globals.Verbose, "verbose", "v", false, "print diagnostic output to stderr")
}

// SetBootstrap installs the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices assigns the services used by commands.
func SetServices(s *Services) {
	searchService = s.Search
	importService = s.Import
	archiveService = s.Archive
	annotationService = s.Annotation
	indexService = s.Index
	settingsService = s.Settings
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer runCleanup()

	return rootCmd.ExecuteContext(ctx)
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(globals.Verbose)
	if bootstrap == nil || skipsBootstrap(cmd) {
		return nil
	}

	services, done, err := bootstrap(cmd.Context(), globals)
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = done
	return nil
}

func runCleanup() {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}

// skipsBootstrap reports whether cmd runs without opening the library.
func skipsBootstrap(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "help", "completion":
			return true
		}
	}
	return false
}

// commandContext returns the command context, or Background when cobra ran
// without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
