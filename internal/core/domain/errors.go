package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Archive errors.

	// ErrNoMainDocument indicates the archive holds no .docx entry.
	ErrNoMainDocument = errors.New("no docx found in zip")

	// ErrEntryNotFound indicates a named ZIP entry could not be located.
	ErrEntryNotFound = errors.New("zip entry not found")

	// ErrTooManyEntries indicates the archive exceeds the entry cap.
	ErrTooManyEntries = errors.New("zip has too many entries")

	// ErrEntryTooLarge indicates an entry exceeds the size cap.
	ErrEntryTooLarge = errors.New("zip entry too large")

	// ErrArchiveTooLarge indicates the ZIP file exceeds the size cap.
	ErrArchiveTooLarge = errors.New("zip file too large")

	// ErrNotDocx indicates the main document is not a readable docx.
	ErrNotDocx = errors.New("main document is not a valid docx")

	// ErrStoredFileMissing indicates the catalog points at bytes that are gone.
	ErrStoredFileMissing = errors.New("stored zip missing")

	// Library errors.

	// ErrLibraryInUse indicates the library root cannot change while it holds archives.
	ErrLibraryInUse = errors.New("library already contains archives")

	// ErrImporterClosed indicates the import worker has shut down.
	ErrImporterClosed = errors.New("importer closed")
)
