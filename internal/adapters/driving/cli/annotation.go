package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivevault/internal/core/ports/driving"
)

var (
	annotationTargetKind string
	annotationTargetRef  string
	annotationLocator    string
	annotationJSON       bool
)

var annotationCmd = &cobra.Command{
	Use:     "annotation",
	Aliases: []string{"note"},
	Short:   "Manage annotations on archives",
	Long: `Annotations are free-text notes attached to an archive, or to a
paragraph or attachment within it. Their text is searchable.`,
}

var annotationAddCmd = &cobra.Command{
	Use:   "add [archive-id] [text...]",
	Short: "Add an annotation",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAnnotationAdd,
}

var annotationListCmd = &cobra.Command{
	Use:   "list [archive-id]",
	Short: "List an archive's annotations",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotationList,
}

var annotationDeleteCmd = &cobra.Command{
	Use:   "delete [annotation-id]",
	Short: "Delete an annotation",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotationDelete,
}

func init() {
	annotationAddCmd.Flags().StringVar(&annotationTargetKind, "target-kind", "", "what the note is attached to (default archive)")
	annotationAddCmd.Flags().StringVar(&annotationTargetRef, "target-ref", "", "id of the target, e.g. p:000003")
	annotationAddCmd.Flags().StringVar(&annotationLocator, "locator", "", "JSON object locating the note within the target")
	annotationListCmd.Flags().BoolVar(&annotationJSON, "json", false, "output as JSON")

	annotationCmd.AddCommand(annotationAddCmd)
	annotationCmd.AddCommand(annotationListCmd)
	annotationCmd.AddCommand(annotationDeleteCmd)
	rootCmd.AddCommand(annotationCmd)
}

func runAnnotationAdd(cmd *cobra.Command, args []string) error {
	if annotationService == nil {
		return errors.New("annotation service not configured")
	}

	req := driving.CreateAnnotationRequest{
		ArchiveID:  args[0],
		TargetKind: annotationTargetKind,
		TargetRef:  annotationTargetRef,
		Content:    strings.Join(args[1:], " "),
	}
	if annotationLocator != "" {
		req.Locator = json.RawMessage(annotationLocator)
	}

	note, err := annotationService.Create(commandContext(cmd), req)
	if err != nil {
		return fmt.Errorf("failed to add annotation: %w", err)
	}

	cmd.Printf("Annotation %s added to %s:%s.\n", note.ID, note.TargetKind, note.TargetRef)
	return nil
}

func runAnnotationList(cmd *cobra.Command, args []string) error {
	if annotationService == nil {
		return errors.New("annotation service not configured")
	}

	notes, err := annotationService.List(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to list annotations: %w", err)
	}

	if annotationJSON {
		return outputJSON(cmd, notes)
	}
	if len(notes) == 0 {
		cmd.Println("No annotations.")
		return nil
	}
	for _, n := range notes {
		cmd.Printf("%s  %s:%s  %s\n", n.ID, n.TargetKind, n.TargetRef, n.Content)
	}
	return nil
}

func runAnnotationDelete(cmd *cobra.Command, args []string) error {
	if annotationService == nil {
		return errors.New("annotation service not configured")
	}

	if err := annotationService.Delete(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to delete annotation: %w", err)
	}

	cmd.Printf("Annotation %s deleted.\n", args[0])
	return nil
}
