package driving

import (
	"context"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search matches the query against blocks, fields, attachments and
	// annotations and returns one ranked page. An empty query yields an
	// empty page.
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchPage, error)
}
