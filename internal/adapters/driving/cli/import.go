package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driving"
)

var (
	importJSON  bool
	importQuiet bool
)

var importCmd = &cobra.Command{
	Use:   "import [path...]",
	Short: "Import ZIP archives into the library",
	Long: `Imports ZIP archives. Directories are scanned recursively for .zip files.

Each archive is copied into the library, its instruction document is
parsed and its attachments are listed. Archives already in the library
(same content) are skipped. A broken archive is recorded as failed and
the batch continues.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var reextractCmd = &cobra.Command{
	Use:   "reextract [archive-id]",
	Short: "Re-parse a stored archive",
	Long: `Re-reads an archive's stored ZIP and replaces its extracted fields,
paragraphs and attachments. Annotations are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runReextract,
}

func init() {
	importCmd.Flags().BoolVar(&importJSON, "json", false, "output the summary as JSON")
	importCmd.Flags().BoolVarP(&importQuiet, "quiet", "q", false, "do not print progress")
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(reextractCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if importService == nil {
		return errors.New("import service not configured")
	}

	var progress driving.ProgressFunc
	if !importJSON && !importQuiet {
		progress = newProgressPrinter(cmd.ErrOrStderr()).Print
	}

	summary, err := importService.Import(commandContext(cmd), args, progress)
	if summary == nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if importJSON {
		if jsonErr := outputJSON(cmd, summary); jsonErr != nil {
			return jsonErr
		}
	} else {
		printImportSummary(cmd, summary)
	}

	if err != nil {
		return fmt.Errorf("import interrupted: %w", err)
	}
	return nil
}

func printImportSummary(cmd *cobra.Command, summary *domain.ImportSummary) {
	for _, r := range summary.Results {
		switch r.Outcome {
		case domain.ImportImported:
			cmd.Printf("  imported  %s (%s)\n", r.Path, r.ArchiveID)
		case domain.ImportSkipped:
			cmd.Printf("  skipped   %s: %s\n", r.Path, r.Reason)
		case domain.ImportFailed:
			cmd.Printf("  failed    %s: %s\n", r.Path, r.Reason)
		}
	}
	cmd.Printf("Imported %d, skipped %d, failed %d.\n", summary.Imported, summary.Skipped, summary.Failed)
}

func runReextract(cmd *cobra.Command, args []string) error {
	if importService == nil {
		return errors.New("import service not configured")
	}

	archiveID := args[0]
	if err := importService.Reextract(commandContext(cmd), archiveID, newProgressPrinter(cmd.ErrOrStderr()).Print); err != nil {
		return fmt.Errorf("reextract failed: %w", err)
	}

	cmd.Printf("Archive %s re-extracted.\n", archiveID)
	return nil
}
