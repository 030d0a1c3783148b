package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

func TestArchiveDate(t *testing.T) {
	loc := time.FixedZone("", 8*3600)
	importedAt := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	importDay := time.Date(2024, 1, 2, 0, 0, 0, 0, loc).Unix()

	tests := []struct {
		name string
		want int64
	}{
		{name: "bridge_20240315.zip", want: time.Date(2024, 3, 15, 0, 0, 0, 0, loc).Unix()},
		{name: "通知2024-03-05版.zip", want: time.Date(2024, 3, 5, 0, 0, 0, 0, loc).Unix()},
		{name: "v2_20240102_20240315.zip", want: time.Date(2024, 1, 2, 0, 0, 0, 0, loc).Unix()},
		{name: "20241340.zip", want: importDay},
		{name: "2024-1-5.zip", want: importDay},
		{name: "readme.zip", want: importDay},
		{name: "20240315", want: time.Date(2024, 3, 15, 0, 0, 0, 0, loc).Unix()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ArchiveDate(tt.name, importedAt, loc))
		})
	}
}

func TestArchiveCandidates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.zip", "B.ZIP", "notes.txt", ".hidden.zip", ".cache/c.zip", "sub/d.zip"} {
		writeFile(t, filepath.Join(dir, name), []byte("x"))
	}

	found, err := ArchiveCandidates(dir, MaxCandidates)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "B.ZIP"),
		filepath.Join(dir, "a.zip"),
		filepath.Join(dir, "sub", "d.zip"),
	}, found)

	limited, err := ArchiveCandidates(dir, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = ArchiveCandidates(filepath.Join(dir, "missing"), MaxCandidates)
	assert.Error(t, err)
}

func TestImportService_Import(t *testing.T) {
	lib := newTestLibrary(t)
	svc := lib.importer(t)
	ctx := context.Background()
	path := writeBridgeArchive(t, t.TempDir(), "bridge_20240102.zip")

	summary, err := svc.Import(ctx, []string{path}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Zero(t, summary.Skipped)
	assert.Zero(t, summary.Failed)
	require.Len(t, summary.Archives, 1)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, domain.ImportImported, summary.Results[0].Outcome)
	id := summary.Archives[0]

	store := lib.store.ArchiveStore()
	archive, err := store.GetArchive(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ArchiveCompleted, archive.Status)
	assert.Equal(t, "bridge_20240102.zip", archive.OriginalName)
	assert.Equal(t, path, archive.SourcePath)
	assert.Equal(t, filepath.Join("store", id, "bridge_20240102.zip"), filepath.FromSlash(archive.StoredPath))
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.FixedZone("", 8*3600)).Unix(), archive.ArchiveDate)
	assert.Equal(t, svc.now().Unix(), archive.ImportedAt)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), archive.Fingerprint)
	stored, err := os.ReadFile(filepath.Join(lib.root, filepath.FromSlash(archive.StoredPath)))
	require.NoError(t, err)
	assert.Equal(t, data, stored)

	doc, err := store.GetMainDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A-2024-001", doc.InstructionNo)
	assert.Equal(t, "桥梁检查", doc.Title)
	assert.Equal(t, "2024年1月2日", doc.IssuedAt)
	assert.Equal(t, "请立即检查北桥的桥墩。\n完成后上报结果。", doc.Content)
	assert.Equal(t, []string{"p:000005", "p:000006"}, doc.Provenance.Content)

	blocks, err := store.ListBlocks(ctx, id)
	require.NoError(t, err)
	assert.Len(t, blocks, len(bridgeParagraphs))

	attachments, err := store.ListAttachments(ctx, id)
	require.NoError(t, err)
	names := make([]string, 0, len(attachments))
	for _, a := range attachments {
		names = append(names, a.DisplayName)
	}
	assert.ElementsMatch(t, []string{"photo.jpg", "report.pdf", "inner.zip", "[inner.zip]/notes.txt"}, names)
}

func TestImportService_SkipsDuplicates(t *testing.T) {
	lib := newTestLibrary(t)
	svc := lib.importer(t)
	ctx := context.Background()
	dir := t.TempDir()
	path := writeBridgeArchive(t, dir, "bridge_20240102.zip")

	first, err := svc.Import(ctx, []string{path}, nil)
	require.NoError(t, err)
	require.Len(t, first.Archives, 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	renamed := writeFile(t, filepath.Join(dir, "copy.zip"), data)

	second, err := svc.Import(ctx, []string{path, renamed}, nil)

	require.NoError(t, err)
	assert.Zero(t, second.Imported)
	assert.Equal(t, 2, second.Skipped)
	assert.Empty(t, second.Archives)
	for _, r := range second.Results {
		assert.Equal(t, domain.ImportSkipped, r.Outcome)
		assert.Equal(t, first.Archives[0], r.ArchiveID)
	}

	count, err := lib.store.ArchiveStore().CountArchives(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestImportService_RepeatedEntryNamesKeepIndexInSync(t *testing.T) {
	lib := newTestLibrary(t)
	svc := lib.importer(t)
	ctx := context.Background()
	data := buildZip(t,
		zipEntry{name: "a.docx", data: buildDocx(t, bridgeParagraphs...)},
		zipEntry{name: "photo.jpg", data: []byte("first")},
		zipEntry{name: "photo.jpg", data: []byte("second")},
	)
	path := writeFile(t, filepath.Join(t.TempDir(), "a_20240102.zip"), data)

	summary, err := svc.Import(ctx, []string{path}, nil)

	require.NoError(t, err)
	require.Equal(t, 1, summary.Imported)
	attachments, err := lib.store.ArchiveStore().ListAttachments(ctx, summary.Archives[0])
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, "photo.jpg", attachments[0].DisplayName)
	assert.Equal(t, int64(len("first")), attachments[0].SizeBytes)

	stats, err := lib.store.IndexMaintainer().IndexStats(ctx)
	require.NoError(t, err)
	for _, st := range stats {
		assert.True(t, st.InSync(), "%s: source=%d index=%d", st.Kind, st.SourceRows, st.IndexRows)
	}
}

func TestImportService_RecordsFailures(t *testing.T) {
	lib := newTestLibrary(t)
	svc := lib.importer(t)
	ctx := context.Background()
	dir := t.TempDir()

	noDocx := writeFile(t, filepath.Join(dir, "nodocx.zip"), buildZip(t, zipEntry{name: "photo.jpg", data: []byte("jpeg")}))
	notZip := writeFile(t, filepath.Join(dir, "junk.zip"), []byte("this is not a zip"))
	missing := filepath.Join(dir, "missing.zip")
	good := writeBridgeArchive(t, dir, "bridge_20240102.zip")

	summary, err := svc.Import(ctx, []string{noDocx, notZip, missing, good}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 3, summary.Failed)
	require.Len(t, summary.Results, 4)

	noDocxResult := summary.Results[0]
	assert.Equal(t, domain.ImportFailed, noDocxResult.Outcome)
	assert.Contains(t, noDocxResult.Reason, domain.ErrNoMainDocument.Error())
	require.NotEmpty(t, noDocxResult.ArchiveID)
	archive, err := lib.store.ArchiveStore().GetArchive(ctx, noDocxResult.ArchiveID)
	require.NoError(t, err)
	assert.Equal(t, domain.ArchiveFailed, archive.Status)
	assert.Contains(t, archive.Error, domain.ErrNoMainDocument.Error())

	assert.Equal(t, domain.ImportFailed, summary.Results[1].Outcome)
	assert.NotEmpty(t, summary.Results[1].ArchiveID)

	assert.Equal(t, domain.ImportFailed, summary.Results[2].Outcome)
	assert.Empty(t, summary.Results[2].ArchiveID)

	assert.Equal(t, domain.ImportImported, summary.Results[3].Outcome)
	assert.Len(t, summary.Archives, 3)
}

func TestImportService_ArchiveTooLarge(t *testing.T) {
	lib := newTestLibrary(t)
	lib.settings.settings.Import.MaxArchiveBytes = 10
	svc := lib.importer(t)
	path := writeBridgeArchive(t, t.TempDir(), "bridge_20240102.zip")

	summary, err := svc.Import(context.Background(), []string{path}, nil)

	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, domain.ImportFailed, summary.Results[0].Outcome)
	assert.Contains(t, summary.Results[0].Reason, domain.ErrArchiveTooLarge.Error())
	assert.Empty(t, summary.Results[0].ArchiveID)
}

func TestImportService_StoreFailureLeavesNoArchive(t *testing.T) {
	lib := newTestLibrary(t)
	svc := NewImportService(lib.store.ArchiveStore(), failingBlobStore{}, lib.tok, lib.settings)
	t.Cleanup(func() { svc.Close() })
	path := writeBridgeArchive(t, t.TempDir(), "bridge_20240102.zip")

	summary, err := svc.Import(context.Background(), []string{path}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, summary.Results[0].Reason, errBlobStore.Error())

	count, err := lib.store.ArchiveStore().CountArchives(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestImportService_Directory(t *testing.T) {
	lib := newTestLibrary(t)
	svc := lib.importer(t)
	dir := t.TempDir()
	writeBridgeArchive(t, dir, "bridge_20240102.zip")
	writeFile(t, filepath.Join(dir, "nested", "other_20240103.zip"),
		buildZip(t, zipEntry{name: "other_20240103.docx", data: buildDocx(t, "标题：另一份")}))
	writeFile(t, filepath.Join(dir, ".trash", "old.zip"), []byte("ignored"))

	summary, err := svc.Import(context.Background(), []string{dir}, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Imported)
	assert.Zero(t, summary.Failed)
}

func TestImportService_Progress(t *testing.T) {
	lib := newTestLibrary(t)
	svc := lib.importer(t)
	dir := t.TempDir()
	good := writeBridgeArchive(t, dir, "bridge_20240102.zip")
	missing := filepath.Join(dir, "missing.zip")

	var events []domain.ProgressEvent
	_, err := svc.Import(context.Background(), []string{good, missing}, func(e domain.ProgressEvent) {
		events = append(events, e)
	})

	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, "start", events[0].Step)
	assert.Zero(t, events[0].Current)

	last := events[len(events)-1]
	assert.True(t, last.Complete)
	assert.Equal(t, "complete", last.Step)
	assert.Equal(t, 2*domain.ImportStepsPerArchive, last.Total)
	assert.Equal(t, last.Total, last.Current)

	prev := 0
	for _, e := range events[:len(events)-1] {
		assert.Equal(t, OperationImport, e.Operation)
		assert.False(t, e.Complete, "step %s completed early", e.Step)
		assert.GreaterOrEqual(t, e.Current, prev)
		assert.LessOrEqual(t, e.Current, e.Total)
		prev = e.Current
	}

	var failed bool
	for _, e := range events {
		if e.Step == "failed" {
			failed = true
			assert.Equal(t, 2*domain.ImportStepsPerArchive-1, e.Current)
		}
	}
	assert.True(t, failed)
}

func TestImportService_EmptyBatch(t *testing.T) {
	lib := newTestLibrary(t)
	svc := lib.importer(t)

	var events []domain.ProgressEvent
	summary, err := svc.Import(context.Background(), nil, func(e domain.ProgressEvent) {
		events = append(events, e)
	})

	require.NoError(t, err)
	assert.Zero(t, summary.Imported+summary.Skipped+summary.Failed)
	assert.NotNil(t, summary.Archives)
	require.NotEmpty(t, events)
	assert.True(t, events[len(events)-1].Complete)
}

func TestImportService_Cancelled(t *testing.T) {
	lib := newTestLibrary(t)
	svc := lib.importer(t)
	path := writeBridgeArchive(t, t.TempDir(), "bridge_20240102.zip")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Import(ctx, []string{path}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	count, countErr := lib.store.ArchiveStore().CountArchives(context.Background())
	require.NoError(t, countErr)
	assert.Zero(t, count)
}

func TestImportService_Close(t *testing.T) {
	lib := newTestLibrary(t)
	svc := lib.importer(t)

	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())

	_, err := svc.Import(context.Background(), []string{"a.zip"}, nil)
	assert.ErrorIs(t, err, domain.ErrImporterClosed)

	err = svc.Reextract(context.Background(), "id", nil)
	assert.ErrorIs(t, err, domain.ErrImporterClosed)
}

func TestImportService_Reextract(t *testing.T) {
	lib := newTestLibrary(t)
	svc := lib.importer(t)
	ctx := context.Background()
	store := lib.store.ArchiveStore()

	summary, err := svc.Import(ctx, []string{writeBridgeArchive(t, t.TempDir(), "bridge_20240102.zip")}, nil)
	require.NoError(t, err)
	id := summary.Archives[0]
	before, err := store.ListAttachments(ctx, id)
	require.NoError(t, err)

	t.Run("replaces the extraction", func(t *testing.T) {
		var events []domain.ProgressEvent
		err := svc.Reextract(ctx, id, func(e domain.ProgressEvent) { events = append(events, e) })

		require.NoError(t, err)
		require.NotEmpty(t, events)
		last := events[len(events)-1]
		assert.Equal(t, OperationReextract, last.Operation)
		assert.True(t, last.Complete)

		after, err := store.ListAttachments(ctx, id)
		require.NoError(t, err)
		require.Len(t, after, len(before))
		for i := range before {
			assert.Equal(t, before[i].ID, after[i].ID)
		}
		archive, err := store.GetArchive(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.ArchiveCompleted, archive.Status)
	})

	t.Run("unknown archive", func(t *testing.T) {
		err := svc.Reextract(ctx, "no-such-archive", nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("corrupt stored file marks the archive failed", func(t *testing.T) {
		archive, err := store.GetArchive(ctx, id)
		require.NoError(t, err)
		writeFile(t, filepath.Join(lib.root, filepath.FromSlash(archive.StoredPath)), []byte("garbage"))

		err = svc.Reextract(ctx, id, nil)
		require.Error(t, err)

		archive, err = store.GetArchive(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.ArchiveFailed, archive.Status)
		assert.NotEmpty(t, archive.Error)
	})

	t.Run("missing stored file keeps the archive", func(t *testing.T) {
		require.NoError(t, os.RemoveAll(filepath.Join(lib.root, "store", id)))

		err := svc.Reextract(ctx, id, nil)
		assert.ErrorIs(t, err, domain.ErrStoredFileMissing)

		archive, err := store.GetArchive(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.ArchiveFailed, archive.Status)
		blocks, err := store.ListBlocks(ctx, id)
		require.NoError(t, err)
		assert.NotEmpty(t, blocks)
	})
}
