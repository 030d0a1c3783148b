// Package blob stores imported archive bytes on the local filesystem under
// the library root.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driven"
)

// StoreDir is the directory under the library root holding archive copies.
const StoreDir = "store"

// FileStore implements driven.BlobStore on the local filesystem.
type FileStore struct {
	root string
}

var _ driven.BlobStore = (*FileStore)(nil)

// NewFileStore creates a blob store rooted at the library root.
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty library root", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(filepath.Join(root, StoreDir), 0700); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Root returns the library root.
func (s *FileStore) Root() string {
	return s.root
}

// Save copies src to store/<archiveID>/<name>. The file appears atomically.
func (s *FileStore) Save(ctx context.Context, archiveID, name string, src io.Reader) (string, error) {
	if err := validSegment(archiveID); err != nil {
		return "", err
	}
	name = filepath.Base(filepath.Clean(name))
	if err := validSegment(name); err != nil {
		return "", err
	}

	rel := path.Join(StoreDir, archiveID, name)
	dir := filepath.Join(s.root, StoreDir, archiveID)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("creating archive directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".incoming-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: src}); err != nil {
		tmp.Close()
		return "", fmt.Errorf("copying archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return rel, nil
}

// Open returns the stored bytes at a path relative to the root.
func (s *FileStore) Open(_ context.Context, relPath string) (driven.Blob, error) {
	full, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", relPath, domain.ErrStoredFileMissing)
		}
		return nil, fmt.Errorf("opening stored archive: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat stored archive: %w", err)
	}
	return &fileBlob{File: f, size: info.Size()}, nil
}

// Delete removes everything stored for an archive.
func (s *FileStore) Delete(_ context.Context, archiveID string) error {
	if err := validSegment(archiveID); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(s.root, StoreDir, archiveID)); err != nil {
		return fmt.Errorf("removing stored archive: %w", err)
	}
	return nil
}

// resolve maps a slash-separated relative path into the root, refusing
// anything that would escape it.
func (s *FileStore) resolve(relPath string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(relPath, "\\", "/"))
	if relPath == "" || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: stored path %q", domain.ErrInvalidInput, relPath)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func validSegment(s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("%w: path segment %q", domain.ErrInvalidInput, s)
	}
	return nil
}

type fileBlob struct {
	*os.File
	size int64
}

func (b *fileBlob) Size() int64 {
	return b.size
}

// ctxReader stops a copy once the context is cancelled.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
