package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	if ports.Search == nil {
		ports.Search = &mockSearchService{}
	}
	if ports.Archive == nil {
		ports.Archive = &mockArchiveService{}
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		mockSearch := &mockSearchService{page: &domain.SearchPage{
			Items: []domain.Hit{
				&domain.BlockHit{ArchiveID: "a1", BlockID: "p:000003", BlockText: "检查北桥",
					Highlights: []domain.Range{{Start: 2, End: 4}}},
				&domain.FieldHit{ArchiveID: "a1", FieldName: domain.FieldContent, SourceText: "北桥",
					BestBlockID: "p:000003"},
				&domain.AttachmentHit{ArchiveID: "a2", FileID: "f1", DisplayName: "北桥.pdf"},
			},
			HasMore: true,
			Offset:  0,
			Limit:   3,
		}}
		server := newTestServer(t, &Ports{Search: mockSearch})

		input := SearchInput{Query: "北桥", Limit: 3}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.True(t, output.HasMore)
		assert.Equal(t, 3, output.Limit)
		require.Len(t, output.Items, 3)

		assert.Equal(t, "docx_block", output.Items[0].Kind)
		assert.Equal(t, "p:000003", output.Items[0].BlockID)
		assert.Equal(t, []domain.Range{{Start: 2, End: 4}}, output.Items[0].Highlights)

		assert.Equal(t, "main_doc_field", output.Items[1].Kind)
		assert.Equal(t, domain.FieldContent, output.Items[1].FieldName)
		assert.Equal(t, "p:000003", output.Items[1].BestBlockID)
		assert.NotNil(t, output.Items[1].Highlights)

		assert.Equal(t, "attachment_name", output.Items[2].Kind)
		assert.Equal(t, "f1", output.Items[2].FileID)
		assert.Equal(t, "北桥.pdf", output.Items[2].Text)

		assert.Equal(t, "北桥", mockSearch.req.Query)
		assert.Equal(t, 3, mockSearch.req.Limit)
	})

	t.Run("passes date and type filters", func(t *testing.T) {
		mockSearch := &mockSearchService{}
		server := newTestServer(t, &Ports{Search: mockSearch})

		input := SearchInput{Query: "x", DateFrom: "2024-01-02", DateTo: "2024-01-03", Types: []string{"pdf"}}
		_, _, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		loc := time.FixedZone("", 8*3600)
		require.NotNil(t, mockSearch.req.Filters.DateFrom)
		require.NotNil(t, mockSearch.req.Filters.DateTo)
		assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, loc).Unix(), *mockSearch.req.Filters.DateFrom)
		assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, loc).Unix()-1, *mockSearch.req.Filters.DateTo)
		assert.Equal(t, []string{"pdf"}, mockSearch.req.Filters.Types)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		_, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "x", DateFrom: "yesterday"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Search: &mockSearchService{err: errors.New("search failed")}})

		_, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}

func TestServer_handleListArchives(t *testing.T) {
	loc := time.FixedZone("", 8*3600)
	mockArchive := &mockArchiveService{archives: []domain.ArchiveSummary{{
		Archive: domain.Archive{
			ID:           "a1",
			OriginalName: "bridge_20240102.zip",
			ArchiveDate:  time.Date(2024, 1, 2, 0, 0, 0, 0, loc).Unix(),
			Status:       domain.ArchiveCompleted,
		},
		InstructionNo: "A-1",
		Title:         "桥梁检查",
	}}}
	server := newTestServer(t, &Ports{Archive: mockArchive})

	_, output, err := server.handleListArchives(context.Background(), nil, ListArchivesInput{Limit: 5, Offset: 1})

	require.NoError(t, err)
	assert.Equal(t, 1, output.Count)
	assert.Equal(t, "2024-01-02", output.Archives[0].ArchiveDate)
	assert.Equal(t, "completed", output.Archives[0].Status)
	assert.Equal(t, "桥梁检查", output.Archives[0].Title)
	assert.Equal(t, 5, mockArchive.filter.Limit)
	assert.Equal(t, 1, mockArchive.filter.Offset)
	assert.Nil(t, mockArchive.filter.DateFrom)
}

func TestServer_handleGetArchive(t *testing.T) {
	mockArchive := &mockArchiveService{detail: &domain.ArchiveDetail{
		Archive:      domain.Archive{ID: "a1", Status: domain.ArchiveCompleted},
		MainDocument: &domain.MainDocument{ArchiveID: "a1", InstructionNo: "A-1", Title: "桥梁检查", Content: "正文"},
		Attachments: []domain.Attachment{
			{ID: "f1", DisplayName: "photo.jpg", FileType: domain.FileTypeImage, SizeBytes: 10},
		},
		Annotations: []domain.Annotation{
			{ID: "n1", TargetKind: "archive", TargetRef: "a1", Locator: []byte(`{}`), Content: "note"},
		},
	}}
	server := newTestServer(t, &Ports{Archive: mockArchive})

	_, output, err := server.handleGetArchive(context.Background(), nil, ArchiveInput{ArchiveID: "a1"})

	require.NoError(t, err)
	assert.Equal(t, "a1", output.Archive.ID)
	assert.Equal(t, "A-1", output.Archive.InstructionNo)
	require.NotNil(t, output.MainDocument)
	assert.Equal(t, "正文", output.MainDocument.Content)
	require.Len(t, output.Attachments, 1)
	assert.Equal(t, "image", output.Attachments[0].FileType)
	require.Len(t, output.Annotations, 1)
	assert.Equal(t, "{}", output.Annotations[0].Locator)

	_, _, err = server.handleGetArchive(context.Background(), nil, ArchiveInput{ArchiveID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServer_handleImport(t *testing.T) {
	ctx := context.Background()

	t.Run("imports paths", func(t *testing.T) {
		mockImport := &mockImportService{summary: &domain.ImportSummary{
			Imported: 1,
			Archives: []string{"a1"},
			Results:  []domain.ImportResult{{Path: "/in/a.zip", Outcome: domain.ImportImported, ArchiveID: "a1"}},
		}}
		server := newTestServer(t, &Ports{Import: mockImport})

		_, output, err := server.handleImport(ctx, nil, ImportInput{Paths: []string{"/in/a.zip"}})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Imported)
		assert.Equal(t, []string{"/in/a.zip"}, mockImport.paths)
	})

	t.Run("requires paths", func(t *testing.T) {
		server := newTestServer(t, &Ports{Import: &mockImportService{}})

		_, _, err := server.handleImport(ctx, nil, ImportInput{})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unavailable without importer", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		_, _, err := server.handleImport(ctx, nil, ImportInput{Paths: []string{"a.zip"}})

		assert.ErrorIs(t, err, ErrImportUnavailable)
	})
}

func TestServer_handleReextract(t *testing.T) {
	mockImport := &mockImportService{}
	server := newTestServer(t, &Ports{Import: mockImport})

	_, output, err := server.handleReextract(context.Background(), nil, ArchiveInput{ArchiveID: "a1"})

	require.NoError(t, err)
	assert.Equal(t, "a1", mockImport.reextract)
	assert.Equal(t, "completed", output.Status)

	mockImport.err = domain.ErrStoredFileMissing
	_, _, err = server.handleReextract(context.Background(), nil, ArchiveInput{ArchiveID: "a1"})
	assert.ErrorIs(t, err, domain.ErrStoredFileMissing)
}
