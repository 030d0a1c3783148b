package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivevault/internal/adapters/driven/storage/blob"
	"github.com/custodia-labs/archivevault/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/tokenizer"
)

// spaceSegmenter splits on whitespace so tests do not load a dictionary.
type spaceSegmenter struct{}

func (spaceSegmenter) Cut(text string) []string {
	return strings.Fields(text)
}

func newTestTokenizer() *tokenizer.Tokenizer {
	return tokenizer.New(spaceSegmenter{})
}

// staticSettings implements SettingsProvider.
type staticSettings struct {
	settings domain.Settings
}

func (s staticSettings) Get() domain.Settings {
	return s.settings
}

// testLibrary wires the real SQLite and file stores under a temp root.
type testLibrary struct {
	root     string
	store    *sqlite.Store
	blobs    *blob.FileStore
	tok      *tokenizer.Tokenizer
	settings staticSettings
}

func newTestLibrary(t *testing.T) *testLibrary {
	t.Helper()
	root := t.TempDir()

	store, err := sqlite.NewStore(root)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	blobs, err := blob.NewFileStore(root)
	require.NoError(t, err)

	return &testLibrary{
		root:     root,
		store:    store,
		blobs:    blobs,
		tok:      newTestTokenizer(),
		settings: staticSettings{settings: domain.DefaultSettings(root)},
	}
}

func (l *testLibrary) importer(t *testing.T) *ImportService {
	t.Helper()
	svc := NewImportService(l.store.ArchiveStore(), l.blobs, l.tok, l.settings)
	svc.now = func() time.Time { return time.Date(2024, 5, 6, 3, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { svc.Close() })
	return svc
}

type zipEntry struct {
	name string
	data []byte
}

func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write(e.data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// buildDocx returns a minimal docx with one paragraph per string.
func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body bytes.Buffer
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		require.NoError(t, xml.EscapeText(&body, []byte(p)))
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	doc := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`
	return buildZip(t, zipEntry{name: "word/document.xml", data: []byte(doc)})
}

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

var bridgeParagraphs = []string{
	"指令编号：A-2024-001",
	"指令标题：桥梁检查",
	"下发时间：2024年1月2日",
	"指令内容：",
	"请立即检查北桥的桥墩。",
	"完成后上报结果。",
}

// writeBridgeArchive writes a typical instruction archive: the main
// document, two loose attachments and a nested ZIP with one entry.
func writeBridgeArchive(t *testing.T, dir, name string) string {
	t.Helper()
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	inner := buildZip(t, zipEntry{name: "notes.txt", data: []byte("inner notes")})
	data := buildZip(t,
		zipEntry{name: stem + ".docx", data: buildDocx(t, bridgeParagraphs...)},
		zipEntry{name: "photo.jpg", data: []byte("jpeg bytes")},
		zipEntry{name: "report.pdf", data: []byte("%PDF-1.4")},
		zipEntry{name: "inner.zip", data: inner},
	)
	return writeFile(t, filepath.Join(dir, name), data)
}
