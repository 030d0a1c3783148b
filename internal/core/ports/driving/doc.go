// Package driving defines the interfaces the CLI, TUI, MCP server and
// directory watcher use to drive the core.
//
//   - SearchService: Ranked, paged full-text search
//   - ImportService: ZIP ingestion and re-extraction on the import worker
//   - ArchiveService: Catalog browsing and deletion
//   - AnnotationService: User notes on archives, paragraphs and attachments
//   - IndexService: Full-text index verification and rebuilds
//   - SettingsService: Library root, time zone and search defaults
//
// Implementations of these interfaces live in internal/core/services.
package driving
