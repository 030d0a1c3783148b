package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

var (
	archiveListLimit  int
	archiveListOffset int
	archiveListFrom   string
	archiveListTo     string
	archiveJSON       bool
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Browse and remove imported archives",
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archives, newest import first",
	Args:  cobra.NoArgs,
	RunE:  runArchiveList,
}

var archiveShowCmd = &cobra.Command{
	Use:   "show [archive-id]",
	Short: "Show an archive's fields, attachments and annotations",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveShow,
}

var archiveBlocksCmd = &cobra.Command{
	Use:   "blocks [archive-id]",
	Short: "Print the instruction document's paragraphs",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveBlocks,
}

var archiveDeleteCmd = &cobra.Command{
	Use:   "delete [archive-id]",
	Short: "Delete an archive and everything extracted from it",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveDelete,
}

func init() {
	archiveListCmd.Flags().IntVarP(&archiveListLimit, "limit", "n", 0, "maximum number of archives")
	archiveListCmd.Flags().IntVar(&archiveListOffset, "offset", 0, "number of archives to skip")
	archiveListCmd.Flags().StringVar(&archiveListFrom, "from", "", "earliest archive date (YYYY-MM-DD)")
	archiveListCmd.Flags().StringVar(&archiveListTo, "to", "", "latest archive date (YYYY-MM-DD)")
	archiveCmd.PersistentFlags().BoolVar(&archiveJSON, "json", false, "output as JSON")

	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveShowCmd)
	archiveCmd.AddCommand(archiveBlocksCmd)
	archiveCmd.AddCommand(archiveDeleteCmd)
	rootCmd.AddCommand(archiveCmd)
}

func runArchiveList(cmd *cobra.Command, _ []string) error {
	if archiveService == nil {
		return errors.New("archive service not configured")
	}

	from, to, err := domain.ParseDayRange(archiveListFrom, archiveListTo, location())
	if err != nil {
		return err
	}

	archives, err := archiveService.List(commandContext(cmd), domain.ArchiveFilter{
		DateFrom: from,
		DateTo:   to,
		Limit:    archiveListLimit,
		Offset:   archiveListOffset,
	})
	if err != nil {
		return fmt.Errorf("failed to list archives: %w", err)
	}

	if archiveJSON {
		return outputJSON(cmd, archives)
	}

	if len(archives) == 0 {
		cmd.Println("No archives imported.")
		return nil
	}

	for i := range archives {
		a := &archives[i]
		cmd.Printf("%s  %s  %-10s  %s\n", a.ID, formatDay(a.ArchiveDate), a.Status, a.OriginalName)
		if a.InstructionNo != "" || a.Title != "" {
			cmd.Printf("    %s %s\n", a.InstructionNo, a.Title)
		}
		if a.Status == domain.ArchiveFailed && a.Error != "" {
			cmd.Printf("    error: %s\n", a.Error)
		}
	}
	return nil
}

func runArchiveShow(cmd *cobra.Command, args []string) error {
	if archiveService == nil {
		return errors.New("archive service not configured")
	}

	detail, err := archiveService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get archive: %w", err)
	}

	if archiveJSON {
		return outputJSON(cmd, detail)
	}

	a := &detail.Archive
	cmd.Printf("Archive:  %s\n", a.ID)
	cmd.Printf("File:     %s\n", a.OriginalName)
	cmd.Printf("Date:     %s\n", formatDay(a.ArchiveDate))
	cmd.Printf("Status:   %s\n", a.Status)
	if a.Error != "" {
		cmd.Printf("Error:    %s\n", a.Error)
	}

	if doc := detail.MainDocument; doc != nil {
		cmd.Println()
		cmd.Printf("Instruction No: %s\n", doc.InstructionNo)
		cmd.Printf("Title:          %s\n", doc.Title)
		cmd.Printf("Issued:         %s\n", doc.IssuedAt)
		if doc.Content != "" {
			cmd.Println("Content:")
			cmd.Println(doc.Content)
		}
	}

	if len(detail.Attachments) > 0 {
		cmd.Println()
		cmd.Printf("Attachments (%d):\n", len(detail.Attachments))
		for _, att := range detail.Attachments {
			cmd.Printf("  %-10s %10d  %s\n", att.FileType, att.SizeBytes, att.DisplayName)
		}
	}

	if len(detail.Annotations) > 0 {
		cmd.Println()
		cmd.Printf("Annotations (%d):\n", len(detail.Annotations))
		for _, n := range detail.Annotations {
			cmd.Printf("  %s  %s:%s  %s\n", n.ID, n.TargetKind, n.TargetRef, n.Content)
		}
	}
	return nil
}

func runArchiveBlocks(cmd *cobra.Command, args []string) error {
	if archiveService == nil {
		return errors.New("archive service not configured")
	}

	blocks, err := archiveService.Blocks(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get paragraphs: %w", err)
	}

	if archiveJSON {
		return outputJSON(cmd, blocks)
	}
	for _, b := range blocks {
		cmd.Printf("%s  %s\n", b.ID, b.Text)
	}
	return nil
}

func runArchiveDelete(cmd *cobra.Command, args []string) error {
	if archiveService == nil {
		return errors.New("archive service not configured")
	}

	if err := archiveService.Delete(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to delete archive: %w", err)
	}

	cmd.Printf("Archive %s deleted.\n", args[0])
	return nil
}
