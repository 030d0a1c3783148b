package driving

import (
	"context"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

// ProgressFunc observes import progress. It may be nil.
type ProgressFunc func(domain.ProgressEvent)

// ImportService ingests ZIP archives into the library.
type ImportService interface {
	// Import processes each path in order and always returns a summary
	// unless the importer itself is unavailable. A bad archive never fails
	// the batch.
	Import(ctx context.Context, paths []string, progress ProgressFunc) (*domain.ImportSummary, error)

	// Reextract re-parses a stored archive and replaces its extraction.
	Reextract(ctx context.Context, archiveID string, progress ProgressFunc) error
}
