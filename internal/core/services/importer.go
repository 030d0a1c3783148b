package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driven"
	"github.com/custodia-labs/archivevault/internal/core/ports/driving"
	"github.com/custodia-labs/archivevault/internal/extractor"
	"github.com/custodia-labs/archivevault/internal/logger"
	"github.com/custodia-labs/archivevault/internal/tokenizer"
	"github.com/custodia-labs/archivevault/internal/ziparchive"
)

// Ensure ImportService implements the interface.
var _ driving.ImportService = (*ImportService)(nil)

// MaxCandidates caps the archives collected from one directory.
const MaxCandidates = 2000

// Progress operations.
const (
	OperationImport    = "import"
	OperationReextract = "reextract"
)

// SettingsProvider supplies the current settings.
type SettingsProvider interface {
	Get() domain.Settings
}

// importJob is one unit of work for the worker.
type importJob struct {
	run  func()
	done chan struct{}
}

// ImportService ingests ZIP archives. All imports and re-extractions run
// on one worker goroutine, so archives are processed strictly one at a time.
type ImportService struct {
	store    driven.ArchiveStore
	blobs    driven.BlobStore
	tok      *tokenizer.Tokenizer
	settings SettingsProvider

	now   func() time.Time
	newID func() string

	mu      sync.Mutex
	running bool
	jobs    chan importJob
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewImportService creates an import service and starts its worker.
func NewImportService(
	store driven.ArchiveStore,
	blobs driven.BlobStore,
	tok *tokenizer.Tokenizer,
	settings SettingsProvider,
) *ImportService {
	s := &ImportService{
		store:    store,
		blobs:    blobs,
		tok:      tok,
		settings: settings,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		running:  true,
		jobs:     make(chan importJob),
		stopCh:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.worker()
	return s
}

func (s *ImportService) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		case job := <-s.jobs:
			job.run()
			close(job.done)
		}
	}
}

// submit runs fn on the worker and waits for it to finish.
func (s *ImportService) submit(ctx context.Context, fn func()) error {
	job := importJob{run: fn, done: make(chan struct{})}
	select {
	case s.jobs <- job:
	case <-s.stopCh:
		return domain.ErrImporterClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-job.done
	return nil
}

// Close stops the worker after the job in flight finishes.
func (s *ImportService) Close() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Import processes each path in order. Directories contribute the .zip
// files beneath them. A bad archive is recorded and the batch continues.
// Cancellation is observed between archives.
func (s *ImportService) Import(
	ctx context.Context, paths []string, progress driving.ProgressFunc,
) (*domain.ImportSummary, error) {
	logger.Section("Import")

	files, err := expandPaths(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Archives to import: %d", len(files))

	summary := &domain.ImportSummary{Archives: []string{}, Results: []domain.ImportResult{}}
	var runErr error
	err = s.submit(ctx, func() {
		runErr = s.runBatch(ctx, files, summary, progress)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Import finished: %d imported, %d skipped, %d failed",
		summary.Imported, summary.Skipped, summary.Failed)
	return summary, runErr
}

func (s *ImportService) runBatch(
	ctx context.Context, files []string, summary *domain.ImportSummary, progress driving.ProgressFunc,
) error {
	total := len(files)
	totalSteps := max(total*domain.ImportStepsPerArchive, 1)
	emit(progress, OperationImport, 0, max(total, 1), "start", "preparing import")

	settings := s.settings.Get()
	for idx, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		step := func(local int, name, message string) {
			current := idx*domain.ImportStepsPerArchive + min(local, domain.ImportStepsPerArchive-1)
			emit(progress, OperationImport, current, totalSteps, name, message)
		}
		step(0, "processing", path)

		result := s.importOne(ctx, path, settings, step)
		switch result.Outcome {
		case domain.ImportSkipped:
			step(domain.ImportStepsPerArchive-1, "skipped", result.Reason)
		case domain.ImportFailed:
			step(domain.ImportStepsPerArchive-1, "failed", result.Reason)
			logger.Error("import failed: %s: %s", path, result.Reason)
		}
		summary.Add(result)
	}

	emit(progress, OperationImport, totalSteps, totalSteps, "complete",
		fmt.Sprintf("imported %d, skipped %d, failed %d", summary.Imported, summary.Skipped, summary.Failed))
	return nil
}

type stepFunc func(local int, name, message string)

func (s *ImportService) importOne(
	ctx context.Context, path string, settings domain.Settings, step stepFunc,
) domain.ImportResult {
	result := domain.ImportResult{Path: path}
	fail := func(err error) domain.ImportResult {
		result.Outcome = domain.ImportFailed
		result.Reason = err.Error()
		return result
	}

	name := filepath.Base(path)
	info, err := os.Stat(path)
	if err != nil {
		return fail(fmt.Errorf("reading %s: %w", name, err))
	}
	if !info.Mode().IsRegular() {
		return fail(fmt.Errorf("%w: %s is not a file", domain.ErrInvalidInput, name))
	}
	if limit := settings.Import.MaxArchiveBytes; limit > 0 && info.Size() > limit {
		return fail(fmt.Errorf("%w: %d bytes", domain.ErrArchiveTooLarge, info.Size()))
	}

	step(1, "fingerprint", name)
	fingerprint, err := fingerprintFile(path)
	if err != nil {
		return fail(err)
	}
	existing, err := s.store.FindByFingerprint(ctx, fingerprint)
	switch {
	case err == nil:
		result.Outcome = domain.ImportSkipped
		result.ArchiveID = existing.ID
		result.Reason = "already imported"
		return result
	case !errors.Is(err, domain.ErrNotFound):
		return fail(err)
	}

	importedAt := s.now()
	archive := &domain.Archive{
		ID:           s.newID(),
		Fingerprint:  fingerprint,
		OriginalName: name,
		SourcePath:   path,
		ArchiveDate:  ArchiveDate(name, importedAt, settings.Location()),
		ImportedAt:   importedAt.Unix(),
		Status:       domain.ArchiveProcessing,
	}

	step(2, "store", name)
	stored, err := s.storeCopy(ctx, archive.ID, name, path)
	if err != nil {
		s.discard(ctx, archive.ID)
		return fail(err)
	}
	archive.StoredPath = stored

	if err := s.store.CreateArchive(ctx, archive); err != nil {
		s.discard(ctx, archive.ID)
		if errors.Is(err, domain.ErrAlreadyExists) {
			result.Outcome = domain.ImportSkipped
			result.Reason = "already imported"
			return result
		}
		return fail(err)
	}
	result.ArchiveID = archive.ID

	err = s.extractSafely(ctx, archive, settings, func(stage int, name, message string) {
		step(3+stage, name, message)
	})
	if err != nil {
		s.markFailed(ctx, archive.ID, err)
		return fail(err)
	}

	result.Outcome = domain.ImportImported
	logger.Debug("Imported %s as %s", name, archive.ID)
	return result
}

func (s *ImportService) storeCopy(ctx context.Context, archiveID, name, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()
	return s.blobs.Save(ctx, archiveID, name, f)
}

// discard removes bytes stored for an archive that never reached the catalog.
func (s *ImportService) discard(ctx context.Context, archiveID string) {
	if err := s.blobs.Delete(ctx, archiveID); err != nil {
		logger.Warn("removing stored copy of %s: %v", archiveID, err)
	}
}

func (s *ImportService) markFailed(ctx context.Context, archiveID string, cause error) {
	if err := s.store.MarkFailed(ctx, archiveID, cause.Error()); err != nil {
		logger.Warn("recording failure of %s: %v", archiveID, err)
	}
}

// Reextract re-parses a stored archive and replaces its extraction.
func (s *ImportService) Reextract(ctx context.Context, archiveID string, progress driving.ProgressFunc) error {
	logger.Section("Reextract")

	var runErr error
	err := s.submit(ctx, func() {
		runErr = s.reextract(ctx, archiveID, progress)
	})
	if err != nil {
		return err
	}
	return runErr
}

func (s *ImportService) reextract(ctx context.Context, archiveID string, progress driving.ProgressFunc) error {
	archive, err := s.store.GetArchive(ctx, archiveID)
	if err != nil {
		return fmt.Errorf("archive %s: %w", archiveID, err)
	}

	const stages = 3
	err = s.extractSafely(ctx, archive, s.settings.Get(), func(stage int, name, message string) {
		emit(progress, OperationReextract, stage, stages, name, message)
	})
	if err != nil {
		// A missing stored file leaves the previous extraction in place.
		if !errors.Is(err, domain.ErrStoredFileMissing) {
			s.markFailed(ctx, archiveID, err)
		}
		return err
	}

	emit(progress, OperationReextract, stages, stages, "complete", "re-extraction finished")
	logger.Info("Re-extracted %s", archiveID)
	return nil
}

// extractSafely runs extract, turning a panic into an error.
func (s *ImportService) extractSafely(
	ctx context.Context, archive *domain.Archive, settings domain.Settings, stage stepFunc,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extraction panicked: %v", r)
		}
	}()
	return s.extract(ctx, archive, settings, stage)
}

// extract reads the stored archive, parses its main document, lists its
// attachments and persists everything in one transaction.
func (s *ImportService) extract(
	ctx context.Context, archive *domain.Archive, settings domain.Settings, stage stepFunc,
) error {
	done := logger.Timed("extract " + archive.ID)
	defer done()

	blob, err := s.blobs.Open(ctx, archive.StoredPath)
	if err != nil {
		return err
	}
	defer blob.Close()

	stage(0, "scan", "identifying main document")
	zr, err := ziparchive.Open(blob, blob.Size(), ziparchive.LimitsFrom(settings.Import))
	if err != nil {
		return err
	}
	mainEntry, err := zr.MainDocument(archive.OriginalName)
	if err != nil {
		return err
	}
	data, err := zr.ReadEntry(mainEntry)
	if err != nil {
		return fmt.Errorf("reading main document %s: %w", ziparchive.DecodeName(mainEntry), err)
	}

	stage(1, "parse", "extracting fields and paragraphs")
	doc, blocks, err := extractor.Parse(archive.ID, data)
	if err != nil {
		return err
	}
	logger.Debug("Main document %s: %d blocks", ziparchive.DecodeName(mainEntry), len(blocks))

	stage(2, "attachments", "listing attachments")
	attachments, err := zr.Attachments(archive.ID, mainEntry)
	if err != nil {
		return err
	}

	ex := &domain.Extraction{MainDocument: *doc, Blocks: blocks, Attachments: attachments}
	return s.store.SaveExtraction(ctx, archive.ID, ex, s.searchTexts(ex))
}

func (s *ImportService) searchTexts(ex *domain.Extraction) domain.SearchTexts {
	texts := domain.SearchTexts{
		Blocks:      make(map[string]string, len(ex.Blocks)),
		Fields:      make(map[string]string, len(domain.MainFields)),
		Attachments: make(map[string]string, len(ex.Attachments)),
	}
	for _, b := range ex.Blocks {
		texts.Blocks[b.ID] = s.tok.SearchText(b.Text)
	}
	for _, f := range domain.MainFields {
		texts.Fields[f] = s.tok.SearchText(ex.MainDocument.Field(f))
	}
	for _, a := range ex.Attachments {
		texts.Attachments[a.ID] = s.tok.SearchText(a.DisplayName)
	}
	return texts
}

func emit(progress driving.ProgressFunc, op string, current, total int, step, message string) {
	if progress == nil {
		return
	}
	progress(domain.ProgressEvent{
		Operation: op,
		Current:   current,
		Total:     total,
		Step:      step,
		Message:   message,
		Complete:  total > 0 && current >= total,
	})
}

func fingerprintFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", filepath.Base(path), err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// expandPaths replaces directories with the archives beneath them.
func expandPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			// Missing files are reported per archive.
			files = append(files, p)
			continue
		}
		found, err := ArchiveCandidates(p, MaxCandidates)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// ArchiveCandidates collects .zip files beneath dir, skipping entries whose
// names start with a dot, up to limit files.
func ArchiveCandidates(dir string, limit int) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && strings.EqualFold(filepath.Ext(d.Name()), ".zip") {
			out = append(out, path)
			if len(out) >= limit {
				return filepath.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ArchiveDate derives the archive date from a file name: the first
// candidate in the stem shaped YYYYMMDD or YYYY-MM-DD that is a real date,
// at midnight in loc. Without one, midnight of the import day is used.
func ArchiveDate(name string, importedAt time.Time, loc *time.Location) int64 {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	candidates := strings.FieldsFunc(stem, func(r rune) bool {
		return (r < '0' || r > '9') && r != '-'
	})
	for _, c := range candidates {
		if d, ok := parseDateCandidate(c, loc); ok {
			return d.Unix()
		}
	}
	local := importedAt.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).Unix()
}

func parseDateCandidate(s string, loc *time.Location) (time.Time, bool) {
	var layout string
	switch {
	case len(s) == 8 && !strings.Contains(s, "-"):
		layout = "20060102"
	case len(s) == 10 && s[4] == '-' && s[7] == '-':
		layout = "2006-01-02"
	default:
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(layout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
