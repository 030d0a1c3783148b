package driving

import (
	"context"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

// ArchiveService browses and removes catalogued archives.
type ArchiveService interface {
	// List returns archives newest import first.
	List(ctx context.Context, filter domain.ArchiveFilter) ([]domain.ArchiveSummary, error)

	// Get returns an archive with its main document, attachments and annotations.
	Get(ctx context.Context, archiveID string) (*domain.ArchiveDetail, error)

	// Blocks returns the main document's paragraphs.
	Blocks(ctx context.Context, archiveID string) ([]domain.Block, error)

	// Delete removes an archive from the catalog, the indexes and the store.
	Delete(ctx context.Context, archiveID string) error
}
