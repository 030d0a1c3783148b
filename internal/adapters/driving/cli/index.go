package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Check and repair the full-text indexes",
}

var indexVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare each index with its source and rebuild stale ones",
	Args:  cobra.NoArgs,
	RunE:  runIndexVerify,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild [kind...]",
	Short: "Rebuild indexes (blocks, fields, attachments, annotations; default all)",
	RunE:  runIndexRebuild,
}

func init() {
	indexCmd.AddCommand(indexVerifyCmd)
	indexCmd.AddCommand(indexRebuildCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexVerify(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	stats, err := indexService.Verify(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	for _, s := range stats {
		state := "ok"
		if s.Rebuilt {
			state = "rebuilt"
		}
		cmd.Printf("  %-12s %6d rows  %s\n", s.Kind, s.SourceRows, state)
	}
	return nil
}

func runIndexRebuild(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	kinds := domain.IndexKinds
	if len(args) > 0 {
		kinds = make([]domain.IndexKind, len(args))
		for i, a := range args {
			kinds[i] = domain.IndexKind(a)
			if !slices.Contains(domain.IndexKinds, kinds[i]) {
				return fmt.Errorf("%w: unknown index %q", domain.ErrInvalidInput, a)
			}
		}
	}

	for _, k := range kinds {
		if err := indexService.Rebuild(commandContext(cmd), k); err != nil {
			return fmt.Errorf("rebuilding %s: %w", k, err)
		}
		cmd.Printf("Rebuilt %s index.\n", k)
	}
	return nil
}
