package driven

import (
	"context"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

// MatchQuery is a full-text query against one index.
type MatchQuery struct {
	// Expression is the OR-joined quoted token expression.
	Expression string

	// Limit caps the rows returned.
	Limit int

	// ArchiveIDs restricts matches to these archives. Nil means no restriction.
	ArchiveIDs []string

	// FileTypes restricts attachment matches. Nil means every type.
	FileTypes []domain.FileType
}

// SearchIndex is the read side of the full-text indexes. Returned hits carry
// no highlights; those are computed by the search service.
type SearchIndex interface {
	// ArchiveIDsInRange returns archives whose date lies in [from, to].
	// A nil bound is open.
	ArchiveIDsInRange(ctx context.Context, from, to *int64) ([]string, error)

	// MatchBlocks searches paragraph text.
	MatchBlocks(ctx context.Context, q MatchQuery) ([]domain.BlockHit, error)

	// MatchFields searches the four main document fields.
	MatchFields(ctx context.Context, q MatchQuery) ([]domain.FieldHit, error)

	// MatchAttachments searches attachment display names.
	MatchAttachments(ctx context.Context, q MatchQuery) ([]domain.AttachmentHit, error)

	// MatchAnnotations searches annotation content.
	MatchAnnotations(ctx context.Context, q MatchQuery) ([]domain.AnnotationHit, error)

	// Provenances loads field provenance for the given archives.
	Provenances(ctx context.Context, archiveIDs []string) (map[string]domain.Provenance, error)

	// BlockTexts loads the text of the given blocks of one archive.
	BlockTexts(ctx context.Context, archiveID string, blockIDs []string) (map[string]string, error)
}

// SearchTextFunc turns display text into index text.
type SearchTextFunc func(text string) string

// IndexMaintainer keeps the full-text indexes consistent with their sources.
type IndexMaintainer interface {
	// IndexStats compares each index with its source table.
	IndexStats(ctx context.Context) ([]domain.IndexStat, error)

	// RebuildIndex drops and repopulates one index from its source table.
	RebuildIndex(ctx context.Context, kind domain.IndexKind, searchText SearchTextFunc) error
}
