package mcp

import (
	"time"

	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search runs full-text queries.
	Search driving.SearchService

	// Archive browses catalogued archives.
	Archive driving.ArchiveService

	// Import ingests and re-extracts archives. Optional.
	Import driving.ImportService

	// Settings supplies the zone date filters are read in. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Archive == nil {
		return ErrMissingArchiveService
	}
	return nil
}

// location returns the zone archive dates are computed in.
func (p *Ports) location() *time.Location {
	if p.Settings != nil {
		return p.Settings.Get().Location()
	}
	return domain.DefaultSettings("").Location()
}
