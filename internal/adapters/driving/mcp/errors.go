// Package mcp provides an MCP (Model Context Protocol) server adapter for archivevault.
// It lets AI assistants search the library, browse archives and import new ones.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrMissingArchiveService is returned when the archive service is not provided.
var ErrMissingArchiveService = errors.New("mcp: archive service is required")

// ErrImportUnavailable is returned by import tools when no importer is wired.
var ErrImportUnavailable = errors.New("mcp: import is not available")
