package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

var (
	searchLimit  int
	searchOffset int
	searchFrom   string
	searchTo     string
	searchTypes  []string
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search imported archives",
	Long: `Searches instruction paragraphs, extracted fields, annotations and
attachment names. Chinese text is matched by words and by character
bigrams and trigrams; any shared token is a match.

Results are ranked paragraphs first, then fields, annotations and
attachment names. Dates are archive dates, YYYY-MM-DD, inclusive.

Types restrict what may match: main_doc, annotation, or an attachment
type (pdf, excel, image, video, docx_other, zip_child, other).`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from settings)")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "number of ranked results to skip")
	searchCmd.Flags().StringVar(&searchFrom, "from", "", "earliest archive date (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchTo, "to", "", "latest archive date (YYYY-MM-DD)")
	searchCmd.Flags().StringSliceVarP(&searchTypes, "type", "t", nil, "restrict result types (repeatable)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	from, to, err := domain.ParseDayRange(searchFrom, searchTo, location())
	if err != nil {
		return err
	}

	page, err := searchService.Search(commandContext(cmd), domain.SearchRequest{
		Query:   args[0],
		Filters: domain.SearchFilters{DateFrom: from, DateTo: to, Types: searchTypes},
		Limit:   searchLimit,
		Offset:  searchOffset,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, page)
	}
	return outputSearchTable(cmd, page)
}

// searchHitJSON tags each hit with its kind so the union survives encoding.
type searchHitJSON struct {
	Kind domain.HitKind `json:"kind"`
	Hit  domain.Hit     `json:"hit"`
}

func outputSearchJSON(cmd *cobra.Command, page *domain.SearchPage) error {
	items := make([]searchHitJSON, len(page.Items))
	for i, h := range page.Items {
		items[i] = searchHitJSON{Kind: h.Kind(), Hit: h}
	}
	return outputJSON(cmd, struct {
		Items   []searchHitJSON `json:"items"`
		HasMore bool            `json:"has_more"`
		Offset  int             `json:"offset"`
		Limit   int             `json:"limit"`
	}{items, page.HasMore, page.Offset, page.Limit})
}

func outputSearchTable(cmd *cobra.Command, page *domain.SearchPage) error {
	if len(page.Items) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	color := colorEnabled(cmd)
	cmd.Printf("Results %d-%d:\n\n", page.Offset+1, page.Offset+len(page.Items))
	for i, h := range page.Items {
		cmd.Printf("  [%d] %s  archive %s\n", page.Offset+i+1, hitLabel(h), h.Archive())
		cmd.Printf("      %s\n", renderHighlights(h.Text(), h.Ranges(), color, snippetRunes))

		if f, ok := h.(*domain.FieldHit); ok && f.BestBlockID != "" {
			cmd.Printf("      best paragraph %s", f.BestBlockID)
			if len(f.BestBlockHighlights) > 0 {
				cmd.Printf(" (%d matches)", len(f.BestBlockHighlights))
			}
			cmd.Println()
		}
		cmd.Println()
	}

	if page.HasMore {
		cmd.Printf("More results: --offset %d\n", page.Offset+len(page.Items))
	}
	return nil
}

// hitLabel names what a hit points at.
func hitLabel(h domain.Hit) string {
	switch v := h.(type) {
	case *domain.BlockHit:
		return "paragraph " + v.BlockID
	case *domain.FieldHit:
		return "field " + v.FieldName
	case *domain.AnnotationHit:
		return "annotation " + v.AnnotationID
	case *domain.AttachmentHit:
		return "attachment " + v.FileID
	default:
		return string(h.Kind())
	}
}
