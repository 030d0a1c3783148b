package domain

import "time"

// ArchiveStatus tracks an archive through the import pipeline.
type ArchiveStatus string

// Archive statuses.
const (
	// ArchiveProcessing is set before parsing begins.
	ArchiveProcessing ArchiveStatus = "processing"

	// ArchiveCompleted is set in the same transaction that persists the extraction.
	ArchiveCompleted ArchiveStatus = "completed"

	// ArchiveFailed records a parse or storage failure; Error carries the reason.
	ArchiveFailed ArchiveStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s ArchiveStatus) IsValid() bool {
	switch s {
	case ArchiveProcessing, ArchiveCompleted, ArchiveFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s ArchiveStatus) String() string {
	return string(s)
}

// Archive is one imported ZIP file.
type Archive struct {
	// ID is a random UUID assigned at import.
	ID string

	// Fingerprint is the hex SHA-256 of the ZIP bytes. Unique across the library.
	Fingerprint string

	// OriginalName is the ZIP's file name at import time.
	OriginalName string

	// SourcePath is where the ZIP was imported from.
	SourcePath string

	// StoredPath is relative to the library root: store/<id>/<original name>.
	StoredPath string

	// ArchiveDate is a unix timestamp (seconds) at local midnight of the
	// date parsed from the file name, or of the import day.
	ArchiveDate int64

	// ImportedAt is a unix timestamp (seconds).
	ImportedAt int64

	// Status is the pipeline state.
	Status ArchiveStatus

	// Error is set when Status is failed.
	Error string
}

// ArchiveTime returns ArchiveDate as a time in loc.
func (a *Archive) ArchiveTime(loc *time.Location) time.Time {
	return time.Unix(a.ArchiveDate, 0).In(loc)
}

// ArchiveSummary is one row of the archive listing.
type ArchiveSummary struct {
	Archive
	InstructionNo string
	Title         string
}

// ArchiveFilter narrows the archive listing.
type ArchiveFilter struct {
	// DateFrom and DateTo bound ArchiveDate inclusively. Nil means unbounded.
	DateFrom *int64
	DateTo   *int64

	Limit  int
	Offset int
}

// ArchiveDetail is an archive with everything extracted from it.
type ArchiveDetail struct {
	Archive      Archive
	MainDocument *MainDocument
	Attachments  []Attachment
	Annotations  []Annotation
}

// Extraction is everything one successful parse produces. It is persisted
// in a single transaction together with the completed status.
type Extraction struct {
	MainDocument MainDocument
	Blocks       []Block
	Attachments  []Attachment
}

// SearchTexts holds pre-tokenised index text for an extraction, keyed the
// same way as the entities they belong to.
type SearchTexts struct {
	// Blocks maps block ID to index text.
	Blocks map[string]string

	// Fields maps field name to index text.
	Fields map[string]string

	// Attachments maps attachment ID to index text.
	Attachments map[string]string
}
