package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Show and change library settings",
	Long: `The library is the directory holding the catalog database and the
stored archives. Settings are kept in config.toml in the config directory.`,
	RunE: runLibraryShow,
}

var libraryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runLibraryShow,
}

var librarySetRootCmd = &cobra.Command{
	Use:   "set-root [path]",
	Short: "Point at another library directory",
	Long: `Changes the library directory used from the next start. Refused while
the current library holds archives; moving data is not supported.`,
	Args: cobra.ExactArgs(1),
	RunE: runLibrarySetRoot,
}

var librarySetOffsetCmd = &cobra.Command{
	Use:   "set-utc-offset [hours]",
	Short: "Set the time zone archive dates are computed in",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibrarySetOffset,
}

var librarySetLimitCmd = &cobra.Command{
	Use:   "set-search-limit [n]",
	Short: "Set the default number of search results",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibrarySetLimit,
}

func init() {
	libraryCmd.AddCommand(libraryShowCmd)
	libraryCmd.AddCommand(librarySetRootCmd)
	libraryCmd.AddCommand(librarySetOffsetCmd)
	libraryCmd.AddCommand(librarySetLimitCmd)
	rootCmd.AddCommand(libraryCmd)
}

func runLibraryShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	s := settingsService.Get()

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Library]")
	cmd.Printf("  Root: %s\n", s.LibraryRoot)
	cmd.Printf("  UTC offset: %+d hours\n", s.UTCOffsetHours)
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Default limit: %d\n", s.SearchLimit)
	cmd.Println()

	cmd.Println("[Import]")
	cmd.Printf("  Max archive size: %s\n", formatBytes(s.Import.MaxArchiveBytes))
	cmd.Printf("  Max entries: %d\n", s.Import.MaxEntries)
	cmd.Printf("  Max nested ZIP size: %s\n", formatBytes(s.Import.MaxNestedBytes))
	cmd.Printf("  Max entry size: %s\n", formatBytes(s.Import.MaxEntryBytes))
	return nil
}

func runLibrarySetRoot(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.SetLibraryRoot(commandContext(cmd), args[0]); err != nil {
		if errors.Is(err, domain.ErrLibraryInUse) {
			return fmt.Errorf("cannot change library root: %w", err)
		}
		return fmt.Errorf("failed to set library root: %w", err)
	}

	cmd.Printf("Library root set to %s. It takes effect on the next start.\n", settingsService.LibraryRoot())
	return nil
}

func runLibrarySetOffset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	hours, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: offset %q is not a number", domain.ErrInvalidInput, args[0])
	}
	if err := settingsService.SetUTCOffset(hours); err != nil {
		return fmt.Errorf("failed to set UTC offset: %w", err)
	}

	cmd.Printf("UTC offset set to %+d hours.\n", hours)
	return nil
}

func runLibrarySetLimit(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	limit, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: limit %q is not a number", domain.ErrInvalidInput, args[0])
	}
	if err := settingsService.SetSearchLimit(limit); err != nil {
		return fmt.Errorf("failed to set search limit: %w", err)
	}

	cmd.Printf("Default search limit set to %d.\n", limit)
	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
