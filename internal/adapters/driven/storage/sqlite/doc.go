// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - ArchiveStore: Archive catalog, main documents, blocks and attachments
//   - SearchIndex: FTS5 queries over blocks, fields, attachment names and annotations
//   - IndexMaintainer: Index/source consistency checks and rebuilds
//   - AnnotationStore: User annotations
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Every FTS5 table indexes a single search_text column holding tokenizer
// output; display text is stored UNINDEXED next to it.
//
// # Data Location
//
// The database is stored at <library root>/library.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
