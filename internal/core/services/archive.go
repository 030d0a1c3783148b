package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driven"
	"github.com/custodia-labs/archivevault/internal/core/ports/driving"
	"github.com/custodia-labs/archivevault/internal/logger"
)

// Ensure ArchiveService implements the interface.
var _ driving.ArchiveService = (*ArchiveService)(nil)

// ArchiveService browses and removes catalogued archives.
type ArchiveService struct {
	store       driven.ArchiveStore
	annotations driven.AnnotationStore
	blobs       driven.BlobStore
}

// NewArchiveService creates a new archive service.
func NewArchiveService(
	store driven.ArchiveStore,
	annotations driven.AnnotationStore,
	blobs driven.BlobStore,
) *ArchiveService {
	return &ArchiveService{
		store:       store,
		annotations: annotations,
		blobs:       blobs,
	}
}

// List returns archives newest import first.
func (s *ArchiveService) List(ctx context.Context, filter domain.ArchiveFilter) ([]domain.ArchiveSummary, error) {
	if filter.Limit <= 0 {
		filter.Limit = domain.DefaultListLimit
	}
	filter.Limit = min(filter.Limit, domain.MaxListLimit)
	filter.Offset = max(filter.Offset, 0)

	archives, err := s.store.ListArchives(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	if archives == nil {
		archives = []domain.ArchiveSummary{}
	}
	return archives, nil
}

// Get returns an archive with its main document, attachments and annotations.
// A failed archive has no main document.
func (s *ArchiveService) Get(ctx context.Context, archiveID string) (*domain.ArchiveDetail, error) {
	archive, err := s.store.GetArchive(ctx, archiveID)
	if err != nil {
		return nil, fmt.Errorf("get archive %s: %w", archiveID, err)
	}
	detail := &domain.ArchiveDetail{Archive: *archive}

	doc, err := s.store.GetMainDocument(ctx, archiveID)
	switch {
	case err == nil:
		detail.MainDocument = doc
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get main document: %w", err)
	}

	if detail.Attachments, err = s.store.ListAttachments(ctx, archiveID); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	if detail.Annotations, err = s.annotations.ListAnnotations(ctx, archiveID); err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	return detail, nil
}

// Blocks returns the main document's paragraphs.
func (s *ArchiveService) Blocks(ctx context.Context, archiveID string) ([]domain.Block, error) {
	if _, err := s.store.GetArchive(ctx, archiveID); err != nil {
		return nil, fmt.Errorf("get archive %s: %w", archiveID, err)
	}
	blocks, err := s.store.ListBlocks(ctx, archiveID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return blocks, nil
}

// Delete removes the archive from the catalog and indexes, then its stored
// bytes. A leftover directory is logged rather than failing the delete.
func (s *ArchiveService) Delete(ctx context.Context, archiveID string) error {
	if err := s.store.DeleteArchive(ctx, archiveID); err != nil {
		return fmt.Errorf("delete archive %s: %w", archiveID, err)
	}
	if err := s.blobs.Delete(ctx, archiveID); err != nil {
		logger.Warn("removing stored files of %s: %v", archiveID, err)
	}
	logger.Info("Deleted archive %s", archiveID)
	return nil
}
