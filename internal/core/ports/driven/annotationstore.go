package driven

import (
	"context"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

// AnnotationStore persists annotations together with their index rows.
type AnnotationStore interface {
	// SaveAnnotation inserts the annotation and its index row in one transaction.
	SaveAnnotation(ctx context.Context, annotation *domain.Annotation, searchText string) error

	// ListAnnotations returns an archive's annotations newest first.
	ListAnnotations(ctx context.Context, archiveID string) ([]domain.Annotation, error)

	// DeleteAnnotation removes an annotation and its index row.
	// Returns domain.ErrNotFound if it does not exist.
	DeleteAnnotation(ctx context.Context, id string) error
}
