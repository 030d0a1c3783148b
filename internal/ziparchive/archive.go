// Package ziparchive reads imported ZIP archives: it decodes legacy entry
// names, picks the instruction document, and lists every other entry as an
// attachment, expanding nested ZIPs one level deep.
package ziparchive

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

// maxExpandDepth is the deepest level whose nested ZIPs are expanded.
const maxExpandDepth = 0

// Limits bounds the work done on one archive.
type Limits struct {
	// MaxEntries caps the entries of the archive and of each nested ZIP.
	MaxEntries int

	// MaxEntryBytes caps an entry read into memory.
	MaxEntryBytes int64

	// MaxNestedBytes caps a nested ZIP that is expanded. Larger ones are
	// still listed as attachments.
	MaxNestedBytes int64
}

// DefaultLimits returns the import defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxEntries:     domain.DefaultMaxEntries,
		MaxEntryBytes:  domain.DefaultMaxEntryBytes,
		MaxNestedBytes: domain.DefaultMaxNestedBytes,
	}
}

// LimitsFrom converts import settings.
func LimitsFrom(s domain.ImportSettings) Limits {
	l := DefaultLimits()
	if s.MaxEntries > 0 {
		l.MaxEntries = s.MaxEntries
	}
	if s.MaxEntryBytes > 0 {
		l.MaxEntryBytes = s.MaxEntryBytes
	}
	if s.MaxNestedBytes > 0 {
		l.MaxNestedBytes = s.MaxNestedBytes
	}
	return l
}

type entry struct {
	file    *zip.File
	decoded string
}

// Archive is an opened ZIP.
type Archive struct {
	entries []entry
	byName  map[string]*zip.File
	limits  Limits
}

// Open reads the central directory of a ZIP.
func Open(r io.ReaderAt, size int64, limits Limits) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("reading zip: %w", err)
	}
	if limits.MaxEntries > 0 && len(zr.File) > limits.MaxEntries {
		return nil, fmt.Errorf("%w: %d entries", domain.ErrTooManyEntries, len(zr.File))
	}

	a := &Archive{
		entries: make([]entry, 0, len(zr.File)),
		byName:  make(map[string]*zip.File, len(zr.File)),
		limits:  limits,
	}
	for _, f := range zr.File {
		a.entries = append(a.entries, entry{file: f, decoded: DecodeName(f.Name)})
		if _, dup := a.byName[f.Name]; !dup {
			a.byName[f.Name] = f
		}
	}
	return a, nil
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	return len(a.entries)
}

// MainDocument picks the instruction document and returns its raw entry
// name. Among .docx entries it prefers one whose stem equals the archive's
// stem, then one whose stem contains or is contained in it, then the first.
func (a *Archive) MainDocument(archiveName string) (string, error) {
	var candidates []entry
	for _, e := range a.entries {
		if isDir(e.file.Name) {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.decoded), ".docx") {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return "", domain.ErrNoMainDocument
	}

	zipStem := strings.ToLower(Stem(archiveName))
	for _, c := range candidates {
		if strings.ToLower(Stem(c.decoded)) == zipStem {
			return c.file.Name, nil
		}
	}
	for _, c := range candidates {
		stem := strings.ToLower(Stem(c.decoded))
		if strings.Contains(zipStem, stem) || strings.Contains(stem, zipStem) {
			return c.file.Name, nil
		}
	}
	return candidates[0].file.Name, nil
}

// ReadEntry returns an entry's bytes. The name is looked up directly, then
// by scanning with separators normalised.
func (a *Archive) ReadEntry(name string) ([]byte, error) {
	f, ok := a.byName[name]
	if !ok {
		want := strings.ReplaceAll(name, `\`, "/")
		for _, e := range a.entries {
			if strings.ReplaceAll(e.file.Name, `\`, "/") == want || e.decoded == name {
				f = e.file
				break
			}
		}
	}
	if f == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEntryNotFound, name)
	}
	return readFile(f, a.limits.MaxEntryBytes)
}

func readFile(f *zip.File, limit int64) ([]byte, error) {
	if limit > 0 && f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("%w: %s", domain.ErrEntryTooLarge, f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	r := io.Reader(rc)
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s", domain.ErrEntryTooLarge, f.Name)
	}
	return data, nil
}

// Attachments lists every entry except the main document, directories and
// junk. Nested ZIPs are listed themselves and their entries are listed at
// depth 1 with display names "[parent]/name". Entries repeating a raw name
// share a stable ID; only the first is listed, as with ReadEntry.
func (a *Archive) Attachments(archiveID, mainEntry string) ([]domain.Attachment, error) {
	all, err := a.walk(archiveID, mainEntry, 0, nil, "")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(all))
	out := all[:0]
	for _, att := range all {
		if _, dup := seen[att.ID]; dup {
			continue
		}
		seen[att.ID] = struct{}{}
		out = append(out, att)
	}
	return out, nil
}

func (a *Archive) walk(archiveID, mainEntry string, depth int, container *string, parentDisplay string) ([]domain.Attachment, error) {
	var out []domain.Attachment
	for _, e := range a.entries {
		raw := e.file.Name
		if isDir(raw) || isJunk(e.decoded, raw) {
			continue
		}
		if depth == 0 && raw == mainEntry {
			continue
		}

		display := Basename(e.decoded)
		if depth > 0 {
			display = "[" + parentDisplay + "]/" + display
		}
		att := domain.Attachment{
			ID:            StableID(archiveID, depth, container, raw),
			ArchiveID:     archiveID,
			DisplayName:   display,
			FileType:      domain.ClassifyFile(e.decoded),
			Depth:         depth,
			ContainerPath: container,
			VirtualPath:   raw,
			SizeBytes:     int64(e.file.UncompressedSize64), //nolint:gosec // sizes fit in int64
		}
		out = append(out, att)

		if att.FileType != domain.FileTypeZipChild || depth > maxExpandDepth {
			continue
		}
		nested, err := a.expand(e.file, archiveID, depth, Basename(e.decoded))
		if err != nil {
			return nil, err
		}
		out = append(out, nested...)
	}
	return out, nil
}

// expand lists the entries of a nested ZIP one level down.
func (a *Archive) expand(f *zip.File, archiveID string, depth int, display string) ([]domain.Attachment, error) {
	if a.limits.MaxNestedBytes > 0 && f.UncompressedSize64 > uint64(a.limits.MaxNestedBytes) {
		return nil, nil
	}
	data, err := readFile(f, a.limits.MaxNestedBytes)
	if err != nil {
		return nil, fmt.Errorf("reading nested zip %s: %w", f.Name, err)
	}
	child, err := Open(bytes.NewReader(data), int64(len(data)), a.limits)
	if err != nil {
		return nil, fmt.Errorf("nested zip %s: %w", f.Name, err)
	}
	container := f.Name
	return child.walk(archiveID, "", depth+1, &container, display)
}

// StableID derives an attachment ID that survives re-extraction:
// hex SHA-256 of "archive|depth|container|path".
func StableID(archiveID string, depth int, container *string, virtualPath string) string {
	h := sha256.New()
	h.Write([]byte(archiveID))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.Itoa(depth)))
	h.Write([]byte("|"))
	if container != nil {
		h.Write([]byte(*container))
	}
	h.Write([]byte("|"))
	h.Write([]byte(virtualPath))
	return hex.EncodeToString(h.Sum(nil))
}
