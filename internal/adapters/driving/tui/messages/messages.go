// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/archivevault/internal/core/domain"
)

// SearchCompleted carries one page of results back to the model.
type SearchCompleted struct {
	Query string
	Page  *domain.SearchPage
	Err   error
}

// HitSelected is sent when a result is opened.
type HitSelected struct {
	Hit domain.Hit
}

// ArchiveLoaded carries an archive's detail and paragraphs for the archive view.
type ArchiveLoaded struct {
	ArchiveID string
	Detail    *domain.ArchiveDetail
	Blocks    []domain.Block
	Err       error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the search input and results view.
	ViewSearch ViewType = iota
	// ViewArchive shows the archive a result belongs to.
	ViewArchive
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewArchive:
		return "archive"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
