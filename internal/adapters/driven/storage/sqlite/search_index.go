package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driven"
)

// searchIndex implements driven.SearchIndex over the FTS5 tables.
type searchIndex struct {
	store *Store
}

var _ driven.SearchIndex = (*searchIndex)(nil)

// ArchiveIDsInRange returns archives whose date lies in [from, to].
func (s *searchIndex) ArchiveIDsInRange(ctx context.Context, from, to *int64) ([]string, error) {
	var (
		where []string
		args  []any
	)
	if from != nil {
		where = append(where, "archive_date >= ?")
		args = append(args, *from)
	}
	if to != nil {
		where = append(where, "archive_date <= ?")
		args = append(args, *to)
	}
	query := "SELECT archive_id FROM archives"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive dates: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning archive id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating archive ids: %w", err)
	}
	return ids, nil
}

// matchClause builds the WHERE clause shared by every index query.
func matchClause(table string, q driven.MatchQuery) (string, []any, error) {
	clause := table + " MATCH ?"
	args := []any{q.Expression}
	if q.ArchiveIDs != nil {
		ids, err := jsonList(q.ArchiveIDs)
		if err != nil {
			return "", nil, err
		}
		clause += " AND archive_id IN (SELECT value FROM json_each(?))"
		args = append(args, ids)
	}
	return clause, args, nil
}

// MatchBlocks searches paragraph text.
func (s *searchIndex) MatchBlocks(ctx context.Context, q driven.MatchQuery) ([]domain.BlockHit, error) {
	where, args, err := matchClause("docx_blocks_fts", q)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT archive_id, block_id, source_text FROM docx_blocks_fts WHERE "+where+" ORDER BY rank LIMIT ?",
		append(args, q.Limit)...)
	if err != nil {
		return nil, fmt.Errorf("matching blocks: %w", err)
	}
	defer rows.Close()

	var hits []domain.BlockHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var h domain.BlockHit
		if err := rows.Scan(&h.ArchiveID, &h.BlockID, &h.BlockText); err != nil {
			return nil, fmt.Errorf("scanning block hit: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating block hits: %w", err)
	}
	return hits, nil
}

// MatchFields searches the main document fields.
func (s *searchIndex) MatchFields(ctx context.Context, q driven.MatchQuery) ([]domain.FieldHit, error) {
	where, args, err := matchClause("main_doc_fts", q)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT archive_id, field_name, source_text FROM main_doc_fts WHERE "+where+" ORDER BY rank LIMIT ?",
		append(args, q.Limit)...)
	if err != nil {
		return nil, fmt.Errorf("matching fields: %w", err)
	}
	defer rows.Close()

	var hits []domain.FieldHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var h domain.FieldHit
		if err := rows.Scan(&h.ArchiveID, &h.FieldName, &h.SourceText); err != nil {
			return nil, fmt.Errorf("scanning field hit: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating field hits: %w", err)
	}
	return hits, nil
}

// MatchAttachments searches attachment display names.
func (s *searchIndex) MatchAttachments(ctx context.Context, q driven.MatchQuery) ([]domain.AttachmentHit, error) {
	where, args, err := matchClause("attachments_fts", q)
	if err != nil {
		return nil, err
	}
	if q.FileTypes != nil {
		types, err := jsonList(q.FileTypes)
		if err != nil {
			return nil, err
		}
		where += ` AND file_id IN (
			SELECT file_id FROM attachments WHERE file_type IN (SELECT value FROM json_each(?)))`
		args = append(args, types)
	}
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT archive_id, file_id, display_name FROM attachments_fts WHERE "+where+" ORDER BY rank LIMIT ?",
		append(args, q.Limit)...)
	if err != nil {
		return nil, fmt.Errorf("matching attachments: %w", err)
	}
	defer rows.Close()

	var hits []domain.AttachmentHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var h domain.AttachmentHit
		if err := rows.Scan(&h.ArchiveID, &h.FileID, &h.DisplayName); err != nil {
			return nil, fmt.Errorf("scanning attachment hit: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attachment hits: %w", err)
	}
	return hits, nil
}

// MatchAnnotations searches annotation content.
func (s *searchIndex) MatchAnnotations(ctx context.Context, q driven.MatchQuery) ([]domain.AnnotationHit, error) {
	where, args, err := matchClause("annotations_fts", q)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT a.archive_id, a.annotation_id, a.target_kind, a.target_ref, a.locator, a.content
		FROM (
			SELECT annotation_id, rank FROM annotations_fts WHERE `+where+` ORDER BY rank LIMIT ?
		) m
		JOIN annotations a ON a.annotation_id = m.annotation_id
		ORDER BY m.rank
	`, append(args, q.Limit)...)
	if err != nil {
		return nil, fmt.Errorf("matching annotations: %w", err)
	}
	defer rows.Close()

	var hits []domain.AnnotationHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var h domain.AnnotationHit
		if err := rows.Scan(&h.ArchiveID, &h.AnnotationID, &h.TargetKind, &h.TargetRef, &h.Locator, &h.Content); err != nil {
			return nil, fmt.Errorf("scanning annotation hit: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating annotation hits: %w", err)
	}
	return hits, nil
}

// Provenances loads field provenance for the given archives. Malformed
// stored JSON yields an empty provenance.
func (s *searchIndex) Provenances(ctx context.Context, archiveIDs []string) (map[string]domain.Provenance, error) {
	out := make(map[string]domain.Provenance, len(archiveIDs))
	if len(archiveIDs) == 0 {
		return out, nil
	}
	ids, err := jsonList(archiveIDs)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT archive_id, provenance FROM main_doc WHERE archive_id IN (SELECT value FROM json_each(?))", ids)
	if err != nil {
		return nil, fmt.Errorf("querying provenance: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var raw sql.NullString
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scanning provenance: %w", err)
		}
		out[id] = domain.ParseProvenance(raw.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating provenance: %w", err)
	}
	return out, nil
}

// BlockTexts loads the text of the given blocks of one archive.
func (s *searchIndex) BlockTexts(ctx context.Context, archiveID string, blockIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(blockIDs))
	if len(blockIDs) == 0 {
		return out, nil
	}
	ids, err := jsonList(blockIDs)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT block_id, text FROM docx_blocks
		WHERE archive_id = ? AND block_id IN (SELECT value FROM json_each(?))
	`, archiveID, ids)
	if err != nil {
		return nil, fmt.Errorf("querying block texts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, text string
		if err := rows.Scan(&id, &text); err != nil {
			return nil, fmt.Errorf("scanning block text: %w", err)
		}
		out[id] = text
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating block texts: %w", err)
	}
	return out, nil
}
