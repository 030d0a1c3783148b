package services

import (
	"context"
	"errors"
	"io"
	"slices"

	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockSearchIndex implements driven.SearchIndex for testing. Hits are
// returned as configured, restricted by the query's archive and type filters.
type mockSearchIndex struct {
	blocks      []domain.BlockHit
	fields      []domain.FieldHit
	annotations []domain.AnnotationHit
	attachments []domain.AttachmentHit
	fileTypes   map[string]domain.FileType

	provenance map[string]domain.Provenance
	blockTexts map[string]map[string]string
	dated      map[string]int64

	err     error
	queries map[string][]driven.MatchQuery
}

func newMockSearchIndex() *mockSearchIndex {
	return &mockSearchIndex{
		fileTypes:  make(map[string]domain.FileType),
		provenance: make(map[string]domain.Provenance),
		blockTexts: make(map[string]map[string]string),
		dated:      make(map[string]int64),
		queries:    make(map[string][]driven.MatchQuery),
	}
}

func allowed(q driven.MatchQuery, archiveID string) bool {
	return q.ArchiveIDs == nil || slices.Contains(q.ArchiveIDs, archiveID)
}

func (m *mockSearchIndex) record(name string, q driven.MatchQuery) {
	m.queries[name] = append(m.queries[name], q)
}

func (m *mockSearchIndex) ArchiveIDsInRange(_ context.Context, from, to *int64) ([]string, error) {
	ids := []string{}
	for id, date := range m.dated {
		if from != nil && date < *from {
			continue
		}
		if to != nil && date > *to {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *mockSearchIndex) MatchBlocks(_ context.Context, q driven.MatchQuery) ([]domain.BlockHit, error) {
	m.record("blocks", q)
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.BlockHit
	for _, h := range m.blocks {
		if allowed(q, h.ArchiveID) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *mockSearchIndex) MatchFields(_ context.Context, q driven.MatchQuery) ([]domain.FieldHit, error) {
	m.record("fields", q)
	var out []domain.FieldHit
	for _, h := range m.fields {
		if allowed(q, h.ArchiveID) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *mockSearchIndex) MatchAttachments(_ context.Context, q driven.MatchQuery) ([]domain.AttachmentHit, error) {
	m.record("attachments", q)
	var out []domain.AttachmentHit
	for _, h := range m.attachments {
		if !allowed(q, h.ArchiveID) {
			continue
		}
		if q.FileTypes != nil && !slices.Contains(q.FileTypes, m.fileTypes[h.FileID]) {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

func (m *mockSearchIndex) MatchAnnotations(_ context.Context, q driven.MatchQuery) ([]domain.AnnotationHit, error) {
	m.record("annotations", q)
	var out []domain.AnnotationHit
	for _, h := range m.annotations {
		if allowed(q, h.ArchiveID) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *mockSearchIndex) Provenances(_ context.Context, archiveIDs []string) (map[string]domain.Provenance, error) {
	out := make(map[string]domain.Provenance)
	for _, id := range archiveIDs {
		if p, ok := m.provenance[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *mockSearchIndex) BlockTexts(_ context.Context, archiveID string, blockIDs []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, id := range blockIDs {
		if text, ok := m.blockTexts[archiveID][id]; ok {
			out[id] = text
		}
	}
	return out, nil
}

// mockIndexMaintainer implements driven.IndexMaintainer for testing.
type mockIndexMaintainer struct {
	stats    []domain.IndexStat
	rebuilt  []domain.IndexKind
	texts    []string
	statsErr error
	buildErr error
}

func (m *mockIndexMaintainer) IndexStats(_ context.Context) ([]domain.IndexStat, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	return slices.Clone(m.stats), nil
}

func (m *mockIndexMaintainer) RebuildIndex(_ context.Context, kind domain.IndexKind, searchText driven.SearchTextFunc) error {
	if m.buildErr != nil {
		return m.buildErr
	}
	m.rebuilt = append(m.rebuilt, kind)
	m.texts = append(m.texts, searchText("ab"))
	return nil
}

// failingBlobStore implements driven.BlobStore and fails every call.
type failingBlobStore struct{}

var errBlobStore = errors.New("blob store unavailable")

func (failingBlobStore) Save(context.Context, string, string, io.Reader) (string, error) {
	return "", errBlobStore
}

func (failingBlobStore) Open(context.Context, string) (driven.Blob, error) {
	return nil, errBlobStore
}

func (failingBlobStore) Delete(context.Context, string) error {
	return errBlobStore
}
