package mcp

import (
	"context"

	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	page *domain.SearchPage
	req  domain.SearchRequest
	err  error
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchPage, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	if m.page == nil {
		return &domain.SearchPage{Items: []domain.Hit{}, Limit: domain.DefaultSearchLimit}, nil
	}
	return m.page, nil
}

// mockArchiveService is a mock implementation of driving.ArchiveService.
type mockArchiveService struct {
	archives []domain.ArchiveSummary
	detail   *domain.ArchiveDetail
	filter   domain.ArchiveFilter
	err      error
}

func (m *mockArchiveService) List(_ context.Context, filter domain.ArchiveFilter) ([]domain.ArchiveSummary, error) {
	m.filter = filter
	return m.archives, m.err
}

func (m *mockArchiveService) Get(_ context.Context, archiveID string) (*domain.ArchiveDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.detail == nil || m.detail.Archive.ID != archiveID {
		return nil, domain.ErrNotFound
	}
	return m.detail, nil
}

func (m *mockArchiveService) Blocks(_ context.Context, _ string) ([]domain.Block, error) {
	return nil, m.err
}

func (m *mockArchiveService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockImportService is a mock implementation of driving.ImportService.
type mockImportService struct {
	summary   *domain.ImportSummary
	paths     []string
	reextract string
	err       error
}

func (m *mockImportService) Import(
	_ context.Context, paths []string, _ driving.ProgressFunc,
) (*domain.ImportSummary, error) {
	m.paths = paths
	return m.summary, m.err
}

func (m *mockImportService) Reextract(_ context.Context, archiveID string, _ driving.ProgressFunc) error {
	m.reextract = archiveID
	return m.err
}
