package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driven"
)

// archiveStore implements driven.ArchiveStore.
type archiveStore struct {
	store *Store
}

var _ driven.ArchiveStore = (*archiveStore)(nil)

const archiveColumns = `archive_id, fingerprint, original_name, source_path, stored_path,
	archive_date, imported_at, status, error`

// CreateArchive inserts a new archive row.
func (s *archiveStore) CreateArchive(ctx context.Context, a *domain.Archive) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO archives (`+archiveColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Fingerprint, a.OriginalName, a.SourcePath, a.StoredPath,
		a.ArchiveDate, a.ImportedAt, string(a.Status), sql.NullString{String: a.Error, Valid: a.Error != ""})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("archive %s: %w", a.Fingerprint, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("saving archive: %w", err)
	}
	return nil
}

// FindByFingerprint returns the archive with the given fingerprint.
func (s *archiveStore) FindByFingerprint(ctx context.Context, fingerprint string) (*domain.Archive, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+archiveColumns+" FROM archives WHERE fingerprint = ?", fingerprint)
	return scanArchive(row)
}

// GetArchive retrieves an archive by ID.
func (s *archiveStore) GetArchive(ctx context.Context, id string) (*domain.Archive, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+archiveColumns+" FROM archives WHERE archive_id = ?", id)
	return scanArchive(row)
}

// ListArchives returns archives newest import first.
func (s *archiveStore) ListArchives(ctx context.Context, filter domain.ArchiveFilter) ([]domain.ArchiveSummary, error) {
	var (
		where []string
		args  []any
	)
	if filter.DateFrom != nil {
		where = append(where, "a.archive_date >= ?")
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, "a.archive_date <= ?")
		args = append(args, *filter.DateTo)
	}
	query := `
		SELECT a.archive_id, a.fingerprint, a.original_name, a.source_path, a.stored_path,
			a.archive_date, a.imported_at, a.status, a.error,
			COALESCE(m.instruction_no, ''), COALESCE(m.title, '')
		FROM archives a
		LEFT JOIN main_doc m ON m.archive_id = a.archive_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY a.imported_at DESC, a.rowid DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying archives: %w", err)
	}
	defer rows.Close()

	var out []domain.ArchiveSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sum domain.ArchiveSummary
		var status string
		var errText sql.NullString
		if err := rows.Scan(&sum.ID, &sum.Fingerprint, &sum.OriginalName, &sum.SourcePath, &sum.StoredPath,
			&sum.ArchiveDate, &sum.ImportedAt, &status, &errText,
			&sum.InstructionNo, &sum.Title); err != nil {
			return nil, fmt.Errorf("scanning archive: %w", err)
		}
		sum.Status = domain.ArchiveStatus(status)
		sum.Error = errText.String
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating archives: %w", err)
	}
	return out, nil
}

// CountArchives returns the number of catalogued archives.
func (s *archiveStore) CountArchives(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM archives").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting archives: %w", err)
	}
	return n, nil
}

// SaveExtraction replaces everything extracted from an archive and marks it
// completed in one transaction.
func (s *archiveStore) SaveExtraction(
	ctx context.Context, archiveID string, ex *domain.Extraction, texts domain.SearchTexts,
) error {
	provenance, err := ex.MainDocument.Provenance.Encode()
	if err != nil {
		return err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM archives WHERE archive_id = ?", archiveID).Scan(&exists); err != nil {
		return fmt.Errorf("checking archive: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("archive %s: %w", archiveID, domain.ErrNotFound)
	}

	doc := ex.MainDocument
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO main_doc (archive_id, instruction_no, title, issued_at, content, provenance)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(archive_id) DO UPDATE SET
			instruction_no = excluded.instruction_no,
			title = excluded.title,
			issued_at = excluded.issued_at,
			content = excluded.content,
			provenance = excluded.provenance
	`, archiveID, doc.InstructionNo, doc.Title, doc.IssuedAt, doc.Content, provenance); err != nil {
		return fmt.Errorf("saving main document: %w", err)
	}

	if err := replaceBlocks(ctx, tx, archiveID, ex.Blocks, texts.Blocks); err != nil {
		return err
	}
	if err := replaceFieldIndex(ctx, tx, archiveID, &doc, texts.Fields); err != nil {
		return err
	}
	if err := syncAttachments(ctx, tx, archiveID, ex.Attachments, texts.Attachments); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE archives SET status = ?, error = NULL WHERE archive_id = ?",
		string(domain.ArchiveCompleted), archiveID); err != nil {
		return fmt.Errorf("marking archive completed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func replaceBlocks(ctx context.Context, tx *sql.Tx, archiveID string, blocks []domain.Block, texts map[string]string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM docx_blocks_fts WHERE archive_id = ?", archiveID); err != nil {
		return fmt.Errorf("clearing block index: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM docx_blocks WHERE archive_id = ?", archiveID); err != nil {
		return fmt.Errorf("clearing blocks: %w", err)
	}

	blockStmt, err := tx.PrepareContext(ctx, "INSERT INTO docx_blocks (archive_id, block_id, text) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer blockStmt.Close()

	ftsStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO docx_blocks_fts (archive_id, block_id, search_text, source_text) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer ftsStmt.Close()

	for _, b := range blocks {
		if _, err := blockStmt.ExecContext(ctx, archiveID, b.ID, b.Text); err != nil {
			return fmt.Errorf("saving block %s: %w", b.ID, err)
		}
		if _, err := ftsStmt.ExecContext(ctx, archiveID, b.ID, texts[b.ID], b.Text); err != nil {
			return fmt.Errorf("indexing block %s: %w", b.ID, err)
		}
	}
	return nil
}

func replaceFieldIndex(ctx context.Context, tx *sql.Tx, archiveID string, doc *domain.MainDocument, texts map[string]string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM main_doc_fts WHERE archive_id = ?", archiveID); err != nil {
		return fmt.Errorf("clearing field index: %w", err)
	}
	for _, field := range domain.MainFields {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO main_doc_fts (archive_id, field_name, search_text, source_text) VALUES (?, ?, ?, ?)",
			archiveID, field, texts[field], doc.Field(field)); err != nil {
			return fmt.Errorf("indexing field %s: %w", field, err)
		}
	}
	return nil
}

// syncAttachments upserts by stable ID so cached paths survive, removes
// attachments that are no longer present and rebuilds their index rows.
func syncAttachments(ctx context.Context, tx *sql.Tx, archiveID string, atts []domain.Attachment, texts map[string]string) error {
	upsert, err := tx.PrepareContext(ctx, `
		INSERT INTO attachments (file_id, archive_id, display_name, file_type, source_depth,
			container_path, virtual_path, size_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_id) DO UPDATE SET
			display_name = excluded.display_name,
			file_type = excluded.file_type,
			source_depth = excluded.source_depth,
			container_path = excluded.container_path,
			virtual_path = excluded.virtual_path,
			size_bytes = excluded.size_bytes
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer upsert.Close()

	keep := make([]string, 0, len(atts))
	unique := make([]domain.Attachment, 0, len(atts))
	seen := make(map[string]bool, len(atts))
	for _, a := range atts {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		unique = append(unique, a)
		if _, err := upsert.ExecContext(ctx, a.ID, archiveID, a.DisplayName, string(a.FileType), a.Depth,
			nullString(a.ContainerPath), a.VirtualPath, a.SizeBytes); err != nil {
			return fmt.Errorf("saving attachment %s: %w", a.DisplayName, err)
		}
		keep = append(keep, a.ID)
	}

	ids, err := jsonList(keep)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM attachments
		WHERE archive_id = ? AND file_id NOT IN (SELECT value FROM json_each(?))
	`, archiveID, ids); err != nil {
		return fmt.Errorf("removing stale attachments: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM attachments_fts WHERE archive_id = ?", archiveID); err != nil {
		return fmt.Errorf("clearing attachment index: %w", err)
	}
	ftsStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO attachments_fts (archive_id, file_id, search_text, display_name) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer ftsStmt.Close()

	for _, a := range unique {
		if _, err := ftsStmt.ExecContext(ctx, archiveID, a.ID, texts[a.ID], a.DisplayName); err != nil {
			return fmt.Errorf("indexing attachment %s: %w", a.DisplayName, err)
		}
	}
	return nil
}

// MarkFailed records a failure on the archive.
func (s *archiveStore) MarkFailed(ctx context.Context, archiveID, message string) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE archives SET status = ?, error = ? WHERE archive_id = ?",
		string(domain.ArchiveFailed), message, archiveID)
	if err != nil {
		return fmt.Errorf("marking archive failed: %w", err)
	}
	return requireAffected(res, archiveID)
}

// GetMainDocument returns the archive's main document.
func (s *archiveStore) GetMainDocument(ctx context.Context, archiveID string) (*domain.MainDocument, error) {
	var doc domain.MainDocument
	var provenance string
	err := s.store.db.QueryRowContext(ctx, `
		SELECT archive_id, instruction_no, title, issued_at, content, provenance
		FROM main_doc WHERE archive_id = ?
	`, archiveID).Scan(&doc.ArchiveID, &doc.InstructionNo, &doc.Title, &doc.IssuedAt, &doc.Content, &provenance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning main document: %w", err)
	}
	doc.Provenance = domain.ParseProvenance(provenance)
	return &doc, nil
}

// ListBlocks returns the archive's paragraphs in document order.
func (s *archiveStore) ListBlocks(ctx context.Context, archiveID string) ([]domain.Block, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT archive_id, block_id, text FROM docx_blocks WHERE archive_id = ? ORDER BY block_id", archiveID)
	if err != nil {
		return nil, fmt.Errorf("querying blocks: %w", err)
	}
	defer rows.Close()

	var blocks []domain.Block //nolint:prealloc // size unknown from query
	for rows.Next() {
		var b domain.Block
		if err := rows.Scan(&b.ArchiveID, &b.ID, &b.Text); err != nil {
			return nil, fmt.Errorf("scanning block: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating blocks: %w", err)
	}
	return blocks, nil
}

// ListAttachments returns attachments ordered by depth then name.
func (s *archiveStore) ListAttachments(ctx context.Context, archiveID string) ([]domain.Attachment, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT file_id, archive_id, display_name, file_type, source_depth,
			container_path, virtual_path, cached_path, size_bytes
		FROM attachments WHERE archive_id = ?
		ORDER BY source_depth, display_name
	`, archiveID)
	if err != nil {
		return nil, fmt.Errorf("querying attachments: %w", err)
	}
	defer rows.Close()

	var out []domain.Attachment //nolint:prealloc // size unknown from query
	for rows.Next() {
		var a domain.Attachment
		var fileType string
		var container, cached sql.NullString
		if err := rows.Scan(&a.ID, &a.ArchiveID, &a.DisplayName, &fileType, &a.Depth,
			&container, &a.VirtualPath, &cached, &a.SizeBytes); err != nil {
			return nil, fmt.Errorf("scanning attachment: %w", err)
		}
		a.FileType = domain.FileType(fileType)
		a.ContainerPath = stringPtr(container)
		a.CachedPath = stringPtr(cached)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attachments: %w", err)
	}
	return out, nil
}

// DeleteArchive removes the archive's index rows and the archive; foreign
// keys cascade to everything extracted from it.
func (s *archiveStore) DeleteArchive(ctx context.Context, archiveID string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"docx_blocks_fts", "main_doc_fts", "attachments_fts", "annotations_fts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE archive_id = ?", archiveID); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM archives WHERE archive_id = ?", archiveID)
	if err != nil {
		return fmt.Errorf("deleting archive: %w", err)
	}
	if err := requireAffected(res, archiveID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func scanArchive(row *sql.Row) (*domain.Archive, error) {
	var a domain.Archive
	var status string
	var errText sql.NullString
	if err := row.Scan(&a.ID, &a.Fingerprint, &a.OriginalName, &a.SourcePath, &a.StoredPath,
		&a.ArchiveDate, &a.ImportedAt, &status, &errText); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning archive: %w", err)
	}
	a.Status = domain.ArchiveStatus(status)
	a.Error = errText.String
	return &a, nil
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, domain.ErrNotFound)
	}
	return nil
}
