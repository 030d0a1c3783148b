package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driven"
	"github.com/custodia-labs/archivevault/internal/core/ports/driving"
	"github.com/custodia-labs/archivevault/internal/tokenizer"
)

// Ensure AnnotationService implements the interface.
var _ driving.AnnotationService = (*AnnotationService)(nil)

// DefaultTargetKind is used when a note names no target.
const DefaultTargetKind = "archive"

// AnnotationService manages user notes on archives.
type AnnotationService struct {
	store driven.AnnotationStore
	tok   *tokenizer.Tokenizer
	now   func() time.Time
}

// NewAnnotationService creates a new annotation service.
func NewAnnotationService(store driven.AnnotationStore, tok *tokenizer.Tokenizer) *AnnotationService {
	return &AnnotationService{
		store: store,
		tok:   tok,
		now:   time.Now,
	}
}

// Create adds a note to an archive.
func (s *AnnotationService) Create(ctx context.Context, req driving.CreateAnnotationRequest) (*domain.Annotation, error) {
	if strings.TrimSpace(req.ArchiveID) == "" {
		return nil, fmt.Errorf("%w: archive id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: annotation content is empty", domain.ErrInvalidInput)
	}
	locator := req.Locator
	if len(locator) == 0 {
		locator = json.RawMessage(`{}`)
	}
	if !json.Valid(locator) {
		return nil, fmt.Errorf("%w: locator is not valid JSON", domain.ErrInvalidInput)
	}
	if req.TargetKind == "" {
		req.TargetKind = DefaultTargetKind
		req.TargetRef = req.ArchiveID
	}

	now := s.now().Unix()
	a := &domain.Annotation{
		ID:         uuid.New().String(),
		ArchiveID:  req.ArchiveID,
		TargetKind: req.TargetKind,
		TargetRef:  req.TargetRef,
		Locator:    locator,
		Content:    req.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.SaveAnnotation(ctx, a, s.tok.SearchText(a.Content)); err != nil {
		return nil, fmt.Errorf("save annotation: %w", err)
	}
	return a, nil
}

// List returns an archive's notes newest first.
func (s *AnnotationService) List(ctx context.Context, archiveID string) ([]domain.Annotation, error) {
	notes, err := s.store.ListAnnotations(ctx, archiveID)
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	if notes == nil {
		notes = []domain.Annotation{}
	}
	return notes, nil
}

// Delete removes a note.
func (s *AnnotationService) Delete(ctx context.Context, annotationID string) error {
	if err := s.store.DeleteAnnotation(ctx, annotationID); err != nil {
		return fmt.Errorf("delete annotation %s: %w", annotationID, err)
	}
	return nil
}
