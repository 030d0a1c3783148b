package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driven"
)

// annotationStore implements driven.AnnotationStore.
type annotationStore struct {
	store *Store
}

var _ driven.AnnotationStore = (*annotationStore)(nil)

// SaveAnnotation inserts the annotation and its index row in one transaction.
func (s *annotationStore) SaveAnnotation(ctx context.Context, a *domain.Annotation, searchText string) error {
	locator := string(a.Locator)
	if locator == "" {
		locator = "{}"
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM archives WHERE archive_id = ?", a.ArchiveID).Scan(&exists); err != nil {
		return fmt.Errorf("checking archive: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("archive %s: %w", a.ArchiveID, domain.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO annotations (annotation_id, archive_id, target_kind, target_ref, locator, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.ArchiveID, a.TargetKind, a.TargetRef, locator, a.Content, a.CreatedAt, a.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("annotation %s: %w", a.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("saving annotation: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO annotations_fts (archive_id, annotation_id, search_text, content) VALUES (?, ?, ?, ?)",
		a.ArchiveID, a.ID, searchText, a.Content); err != nil {
		return fmt.Errorf("indexing annotation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListAnnotations returns an archive's annotations newest first.
func (s *annotationStore) ListAnnotations(ctx context.Context, archiveID string) ([]domain.Annotation, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT annotation_id, archive_id, target_kind, target_ref, locator, content, created_at, updated_at
		FROM annotations WHERE archive_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, archiveID)
	if err != nil {
		return nil, fmt.Errorf("querying annotations: %w", err)
	}
	defer rows.Close()

	var out []domain.Annotation //nolint:prealloc // size unknown from query
	for rows.Next() {
		var a domain.Annotation
		var locator string
		if err := rows.Scan(&a.ID, &a.ArchiveID, &a.TargetKind, &a.TargetRef, &locator,
			&a.Content, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning annotation: %w", err)
		}
		a.Locator = []byte(locator)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating annotations: %w", err)
	}
	return out, nil
}

// DeleteAnnotation removes an annotation and its index row.
func (s *annotationStore) DeleteAnnotation(ctx context.Context, id string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM annotations_fts WHERE annotation_id = ?", id); err != nil {
		return fmt.Errorf("clearing annotation index: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM annotations WHERE annotation_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting annotation: %w", err)
	}
	if err := requireAffected(res, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
