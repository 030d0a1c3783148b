package driven

import (
	"context"
	"io"
)

// Blob is random-access stored bytes.
type Blob interface {
	io.ReaderAt
	io.Closer
	Size() int64
}

// BlobStore keeps imported archive bytes under the library root.
type BlobStore interface {
	// Save copies src to store/<archiveID>/<name> and returns that relative path.
	Save(ctx context.Context, archiveID, name string, src io.Reader) (string, error)

	// Open returns the stored bytes at a relative path.
	// Returns domain.ErrStoredFileMissing if the file is gone.
	Open(ctx context.Context, relPath string) (Blob, error)

	// Delete removes everything stored for an archive. Missing data is not an error.
	Delete(ctx context.Context, archiveID string) error
}
