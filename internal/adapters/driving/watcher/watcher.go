// Package watcher imports ZIP archives dropped into a directory.
//
// fsnotify events are collected per path and a path is imported once it has
// been quiet for the debounce interval, so a file still being copied is not
// read half-written. Imports go through driving.ImportService and therefore
// share its single worker with every other caller.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driving"
	"github.com/custodia-labs/archivevault/internal/logger"
)

// ReportFunc receives the outcome of each imported batch.
type ReportFunc func(summary *domain.ImportSummary, err error)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a path must be quiet before it is imported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithReporter sets the batch callback.
func WithReporter(fn ReportFunc) Option {
	return func(w *Watcher) {
		w.report = fn
	}
}

// WithProgress forwards import progress.
func WithProgress(fn driving.ProgressFunc) Option {
	return func(w *Watcher) {
		w.progress = fn
	}
}

// WithInitialScan imports archives already in the directory on start.
// Archives imported before are skipped by fingerprint.
func WithInitialScan() Option {
	return func(w *Watcher) {
		w.initialScan = true
	}
}

// Watcher feeds new .zip files under a directory to the importer.
type Watcher struct {
	dir         string
	importer    driving.ImportService
	debounce    time.Duration
	report      ReportFunc
	progress    driving.ProgressFunc
	initialScan bool

	mu      sync.Mutex
	pending map[string]time.Time
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates a watcher for dir.
func New(dir string, importer driving.ImportService, opts ...Option) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	w := &Watcher{
		dir:      dir,
		importer: importer,
		debounce: domain.DefaultWatchDebounceSec * time.Second,
		pending:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start watches until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.markStopped()
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if _, err := w.addTree(fsw, w.dir); err != nil {
		w.markStopped()
		return err
	}
	logger.Info("Watching %s for new archives", w.dir)

	if w.initialScan {
		w.importBatch(ctx, []string{w.dir})
	}

	return w.run(ctx, fsw)
}

// Stop shuts the watcher down after the batch in flight finishes.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	w.wg.Wait()
	return nil
}

func (w *Watcher) markStopped() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) error {
	ticker := time.NewTicker(max(w.debounce/4, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.markStopped()
			return nil
		case <-w.stopCh:
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if dir := w.newDirectory(ev); dir != "" {
				archives, err := w.addTree(fsw, dir)
				if err != nil {
					logger.Warn("watch %s: %v", dir, err)
				}
				// Archives moved in with the directory raise no events of their own.
				now := time.Now()
				for _, path := range archives {
					w.touch(path, now)
				}
				continue
			}
			if path := w.handleEvent(ev); path != "" {
				w.touch(path, time.Now())
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		case now := <-ticker.C:
			if due := w.due(now); len(due) > 0 {
				w.importBatch(ctx, due)
			}
		}
	}
}

// handleEvent returns the archive path an event concerns, or "" when the
// event should be ignored.
func (w *Watcher) handleEvent(ev fsnotify.Event) string {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return ""
	}
	if !isArchiveName(ev.Name) {
		return ""
	}
	info, err := os.Stat(ev.Name)
	if err != nil || info.IsDir() {
		return ""
	}
	return ev.Name
}

// newDirectory returns the path of a directory created under the watch root.
func (w *Watcher) newDirectory(ev fsnotify.Event) string {
	if !ev.Has(fsnotify.Create) || isHidden(ev.Name) {
		return ""
	}
	info, err := os.Stat(ev.Name)
	if err != nil || !info.IsDir() {
		return ""
	}
	return ev.Name
}

// touch records activity on path, restarting its quiet period.
func (w *Watcher) touch(path string, at time.Time) {
	w.mu.Lock()
	w.pending[path] = at
	w.mu.Unlock()
}

// due removes and returns the pending paths quiet for the debounce interval.
func (w *Watcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var paths []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			paths = append(paths, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(paths)
	return paths
}

func (w *Watcher) importBatch(ctx context.Context, paths []string) {
	logger.Debug("Watcher importing %d path(s)", len(paths))
	summary, err := w.importer.Import(ctx, paths, w.progress)
	if err != nil {
		logger.Warn("watch import: %v", err)
	}
	if w.report != nil {
		w.report(summary, err)
	}
}

// addTree watches root and every visible directory below it, returning the
// archives already present.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) ([]string, error) {
	var archives []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if isArchiveName(path) {
				archives = append(archives, path)
			}
			return nil
		}
		if path != root && isHidden(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
	return archives, err
}

func isArchiveName(path string) bool {
	return !isHidden(path) && strings.EqualFold(filepath.Ext(path), ".zip")
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
