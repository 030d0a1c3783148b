package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driven"
)

// indexMaintainer implements driven.IndexMaintainer.
type indexMaintainer struct {
	store *Store
}

var _ driven.IndexMaintainer = (*indexMaintainer)(nil)

// indexSource describes how one FTS table is derived from its source.
type indexSource struct {
	table string
	// count is the number of index rows the source should produce.
	count string
	// rows selects archive_id, key, display text.
	rows   string
	insert string
}

var indexSources = map[domain.IndexKind]indexSource{
	domain.IndexBlocks: {
		table:  "docx_blocks_fts",
		count:  "SELECT COUNT(*) FROM docx_blocks",
		rows:   "SELECT archive_id, block_id, text FROM docx_blocks",
		insert: "INSERT INTO docx_blocks_fts (archive_id, block_id, search_text, source_text) VALUES (?, ?, ?, ?)",
	},
	domain.IndexFields: {
		table: "main_doc_fts",
		// One row per field.
		count: fmt.Sprintf("SELECT COUNT(*) * %d FROM main_doc", len(domain.MainFields)),
		rows: `
			SELECT archive_id, 'instruction_no', instruction_no FROM main_doc
			UNION ALL SELECT archive_id, 'title', title FROM main_doc
			UNION ALL SELECT archive_id, 'issued_at', issued_at FROM main_doc
			UNION ALL SELECT archive_id, 'content', content FROM main_doc`,
		insert: "INSERT INTO main_doc_fts (archive_id, field_name, search_text, source_text) VALUES (?, ?, ?, ?)",
	},
	domain.IndexAttachments: {
		table:  "attachments_fts",
		count:  "SELECT COUNT(*) FROM attachments",
		rows:   "SELECT archive_id, file_id, display_name FROM attachments",
		insert: "INSERT INTO attachments_fts (archive_id, file_id, search_text, display_name) VALUES (?, ?, ?, ?)",
	},
	domain.IndexAnnotations: {
		table:  "annotations_fts",
		count:  "SELECT COUNT(*) FROM annotations",
		rows:   "SELECT archive_id, annotation_id, content FROM annotations",
		insert: "INSERT INTO annotations_fts (archive_id, annotation_id, search_text, content) VALUES (?, ?, ?, ?)",
	},
}

// IndexStats compares each index with its source table.
func (m *indexMaintainer) IndexStats(ctx context.Context) ([]domain.IndexStat, error) {
	stats := make([]domain.IndexStat, 0, len(domain.IndexKinds))
	for _, kind := range domain.IndexKinds {
		src := indexSources[kind]
		stat := domain.IndexStat{Kind: kind}
		if err := m.store.db.QueryRowContext(ctx, src.count).Scan(&stat.SourceRows); err != nil {
			return nil, fmt.Errorf("counting %s source: %w", kind, err)
		}
		if err := m.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+src.table).Scan(&stat.IndexRows); err != nil {
			return nil, fmt.Errorf("counting %s index: %w", kind, err)
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

type indexRow struct {
	archiveID, key, text string
}

// RebuildIndex drops and repopulates one index from its source table.
func (m *indexMaintainer) RebuildIndex(ctx context.Context, kind domain.IndexKind, searchText driven.SearchTextFunc) error {
	src, ok := indexSources[kind]
	if !ok {
		return fmt.Errorf("%w: unknown index %q", domain.ErrInvalidInput, kind)
	}

	tx, err := m.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Read everything first; the transaction holds a single connection.
	rows, err := loadIndexRows(ctx, tx, src.rows)
	if err != nil {
		return fmt.Errorf("reading %s source: %w", kind, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+src.table); err != nil {
		return fmt.Errorf("clearing %s: %w", src.table, err)
	}

	stmt, err := tx.PrepareContext(ctx, src.insert)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.archiveID, r.key, searchText(r.text), r.text); err != nil {
			return fmt.Errorf("indexing %s %s: %w", kind, r.key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func loadIndexRows(ctx context.Context, tx *sql.Tx, query string) ([]indexRow, error) {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []indexRow
	for rows.Next() {
		var r indexRow
		if err := rows.Scan(&r.archiveID, &r.key, &r.text); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
