package driven

import (
	"context"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

// ArchiveStore persists the archive catalog and everything extracted from
// each archive. Writes that touch more than one table are transactional.
type ArchiveStore interface {
	// CreateArchive inserts a new archive row.
	// Returns domain.ErrAlreadyExists if the fingerprint is already catalogued.
	CreateArchive(ctx context.Context, archive *domain.Archive) error

	// FindByFingerprint returns the archive with the given fingerprint.
	// Returns domain.ErrNotFound if none exists.
	FindByFingerprint(ctx context.Context, fingerprint string) (*domain.Archive, error)

	// GetArchive retrieves an archive by ID.
	GetArchive(ctx context.Context, id string) (*domain.Archive, error)

	// ListArchives returns archives newest import first.
	ListArchives(ctx context.Context, filter domain.ArchiveFilter) ([]domain.ArchiveSummary, error)

	// CountArchives returns the number of catalogued archives.
	CountArchives(ctx context.Context) (int, error)

	// SaveExtraction replaces the main document, blocks and their index
	// rows, synchronises attachments, and marks the archive completed, all
	// in one transaction.
	SaveExtraction(ctx context.Context, archiveID string, ex *domain.Extraction, texts domain.SearchTexts) error

	// MarkFailed records a failure on the archive.
	MarkFailed(ctx context.Context, archiveID, message string) error

	// GetMainDocument returns the archive's main document.
	GetMainDocument(ctx context.Context, archiveID string) (*domain.MainDocument, error)

	// ListBlocks returns the archive's paragraphs in document order.
	ListBlocks(ctx context.Context, archiveID string) ([]domain.Block, error)

	// ListAttachments returns attachments ordered by depth then name.
	ListAttachments(ctx context.Context, archiveID string) ([]domain.Attachment, error)

	// DeleteArchive removes the archive, its index rows and, by cascade,
	// everything extracted from it.
	DeleteArchive(ctx context.Context, archiveID string) error
}
