package driving

import (
	"context"
	"encoding/json"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

// CreateAnnotationRequest describes a new annotation.
type CreateAnnotationRequest struct {
	ArchiveID  string
	TargetKind string
	TargetRef  string
	Locator    json.RawMessage
	Content    string
}

// AnnotationService manages user notes on archives.
type AnnotationService interface {
	Create(ctx context.Context, req CreateAnnotationRequest) (*domain.Annotation, error)
	List(ctx context.Context, archiveID string) ([]domain.Annotation, error)
	Delete(ctx context.Context, annotationID string) error
}
