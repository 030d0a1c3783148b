package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driving"
)

func TestAnnotationService_Create(t *testing.T) {
	lib := newTestLibrary(t)
	id := importBridge(t, lib, "bridge_20240102.zip")
	svc := NewAnnotationService(lib.store.AnnotationStore(), lib.tok)
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	ctx := context.Background()

	t.Run("defaults target to the archive", func(t *testing.T) {
		note, err := svc.Create(ctx, driving.CreateAnnotationRequest{ArchiveID: id, Content: "复核桥墩裂缝"})

		require.NoError(t, err)
		assert.NotEmpty(t, note.ID)
		assert.Equal(t, DefaultTargetKind, note.TargetKind)
		assert.Equal(t, id, note.TargetRef)
		assert.JSONEq(t, `{}`, string(note.Locator))
		assert.Equal(t, int64(1700000000), note.CreatedAt)
		assert.Equal(t, note.CreatedAt, note.UpdatedAt)
	})

	t.Run("keeps an explicit target", func(t *testing.T) {
		note, err := svc.Create(ctx, driving.CreateAnnotationRequest{
			ArchiveID:  id,
			TargetKind: "block",
			TargetRef:  "p:000005",
			Locator:    json.RawMessage(`{"start":2,"end":4}`),
			Content:    "see paragraph",
		})

		require.NoError(t, err)
		assert.Equal(t, "block", note.TargetKind)
		assert.Equal(t, "p:000005", note.TargetRef)
		assert.JSONEq(t, `{"start":2,"end":4}`, string(note.Locator))
	})

	t.Run("validation", func(t *testing.T) {
		_, err := svc.Create(ctx, driving.CreateAnnotationRequest{Content: "x"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = svc.Create(ctx, driving.CreateAnnotationRequest{ArchiveID: id, Content: "  "})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = svc.Create(ctx, driving.CreateAnnotationRequest{ArchiveID: id, Content: "x", Locator: json.RawMessage(`{`)})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown archive", func(t *testing.T) {
		_, err := svc.Create(ctx, driving.CreateAnnotationRequest{ArchiveID: "missing", Content: "x"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAnnotationService_SearchableAndDeletable(t *testing.T) {
	lib := newTestLibrary(t)
	id := importBridge(t, lib, "bridge_20240102.zip")
	svc := NewAnnotationService(lib.store.AnnotationStore(), lib.tok)
	search := NewSearchService(lib.store.SearchIndex(), lib.tok)
	ctx := context.Background()

	note, err := svc.Create(ctx, driving.CreateAnnotationRequest{ArchiveID: id, Content: "复核裂缝宽度"})
	require.NoError(t, err)

	page, err := search.Search(ctx, domain.SearchRequest{
		Query:   "裂缝",
		Filters: domain.SearchFilters{Types: []string{domain.TypeAnnotation}},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	hit := page.Items[0].(*domain.AnnotationHit)
	assert.Equal(t, note.ID, hit.AnnotationID)
	assert.Equal(t, []domain.Range{{Start: 2, End: 4}}, hit.Highlights)

	notes, err := svc.List(ctx, id)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	require.NoError(t, svc.Delete(ctx, note.ID))
	assert.ErrorIs(t, svc.Delete(ctx, note.ID), domain.ErrNotFound)

	notes, err = svc.List(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, notes)
	assert.Empty(t, notes)

	page, err = search.Search(ctx, domain.SearchRequest{Query: "裂缝"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}
