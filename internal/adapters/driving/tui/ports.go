// Package tui provides an interactive terminal user interface for archive
// search. It implements a driving adapter following hexagonal architecture
// principles.
package tui

import (
	"time"

	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search runs queries. Required.
	Search driving.SearchService

	// Archive loads the archive a result belongs to. Without it results
	// cannot be opened.
	Archive driving.ArchiveService

	// Settings supplies the page size and the zone dates are shown in.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	search driving.SearchService,
	archive driving.ArchiveService,
	settings driving.SettingsService,
) *Ports {
	return &Ports{
		Search:   search,
		Archive:  archive,
		Settings: settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrNilPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}

// Location returns the zone archive dates are shown in.
func (p *Ports) Location() *time.Location {
	if p.Settings != nil {
		return p.Settings.Get().Location()
	}
	return domain.DefaultSettings("").Location()
}

// PageSize returns the configured number of results per page, or zero to
// let the search service decide.
func (p *Ports) PageSize() int {
	if p.Settings != nil {
		return p.Settings.Get().SearchLimit
	}
	return 0
}
