package driving

import (
	"context"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

// IndexService checks and repairs the full-text indexes.
type IndexService interface {
	// Verify compares every index with its source and rebuilds those that differ.
	Verify(ctx context.Context) ([]domain.IndexStat, error)

	// Rebuild forces a rebuild of one index.
	Rebuild(ctx context.Context, kind domain.IndexKind) error
}
