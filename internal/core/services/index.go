package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driven"
	"github.com/custodia-labs/archivevault/internal/core/ports/driving"
	"github.com/custodia-labs/archivevault/internal/logger"
	"github.com/custodia-labs/archivevault/internal/tokenizer"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService keeps the full-text indexes in step with their sources.
type IndexService struct {
	maintainer driven.IndexMaintainer
	tok        *tokenizer.Tokenizer
}

// NewIndexService creates a new index service.
func NewIndexService(maintainer driven.IndexMaintainer, tok *tokenizer.Tokenizer) *IndexService {
	return &IndexService{maintainer: maintainer, tok: tok}
}

// Verify compares every index with its source and rebuilds those whose
// row counts differ.
func (s *IndexService) Verify(ctx context.Context) ([]domain.IndexStat, error) {
	stats, err := s.maintainer.IndexStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("index stats: %w", err)
	}
	for i := range stats {
		if stats[i].InSync() {
			continue
		}
		logger.Warn("index %s out of sync (%d source rows, %d index rows), rebuilding",
			stats[i].Kind, stats[i].SourceRows, stats[i].IndexRows)
		if err := s.Rebuild(ctx, stats[i].Kind); err != nil {
			return nil, err
		}
		stats[i].IndexRows = stats[i].SourceRows
		stats[i].Rebuilt = true
	}
	return stats, nil
}

// Rebuild repopulates one index from its source.
func (s *IndexService) Rebuild(ctx context.Context, kind domain.IndexKind) error {
	done := logger.Timed("rebuild " + string(kind) + " index")
	defer done()
	if err := s.maintainer.RebuildIndex(ctx, kind, s.tok.SearchText); err != nil {
		return fmt.Errorf("rebuild %s index: %w", kind, err)
	}
	return nil
}
