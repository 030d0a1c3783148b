package tui

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("tui: search service is required")

// ErrNilPorts is returned when no ports are given.
var ErrNilPorts = errors.New("tui: ports are required")
