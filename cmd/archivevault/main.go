// Command archivevault imports instruction archives and searches them.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/archivevault/internal/adapters/driven/config/file"
	"github.com/custodia-labs/archivevault/internal/adapters/driven/segmenter/gse"
	"github.com/custodia-labs/archivevault/internal/adapters/driven/storage/blob"
	"github.com/custodia-labs/archivevault/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/archivevault/internal/adapters/driving/cli"
	"github.com/custodia-labs/archivevault/internal/core/services"
	"github.com/custodia-labs/archivevault/internal/logger"
	"github.com/custodia-labs/archivevault/internal/tokenizer"
)

// version is set via ldflags during build.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap opens the library named by the configuration and wires the
// core services onto it.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, func(), error) {
	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := file.DefaultConfigDir()
		if err != nil {
			return nil, nil, err
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, filepath.Join(configDir, "library"))
	if opts.LibraryRoot != "" {
		settingsService.OverrideLibraryRoot(opts.LibraryRoot)
	}
	root := settingsService.LibraryRoot()
	logger.Debug("Library root: %s", root)

	store, err := sqlite.NewStore(root)
	if err != nil {
		return nil, nil, fmt.Errorf("opening library: %w", err)
	}

	blobs, err := blob.NewFileStore(root)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("opening archive store: %w", err)
	}

	tok := tokenizer.New(gse.New())

	archiveStore := store.ArchiveStore()
	settingsService.SetArchiveCounter(archiveStore.CountArchives)

	searchService := services.NewSearchService(store.SearchIndex(), tok)
	searchService.SetDefaultLimit(settingsService.Get().SearchLimit)

	importService := services.NewImportService(archiveStore, blobs, tok, settingsService)
	indexService := services.NewIndexService(store.IndexMaintainer(), tok)

	// Indexes left behind by an interrupted write are rebuilt before use.
	if _, err := indexService.Verify(ctx); err != nil {
		logger.Warn("index verification failed: %v", err)
	}

	cleanup := func() {
		if err := importService.Close(); err != nil {
			logger.Warn("stopping importer: %v", err)
		}
		if err := store.Close(); err != nil {
			logger.Warn("closing library: %v", err)
		}
	}

	return &cli.Services{
		Search:     searchService,
		Import:     importService,
		Archive:    services.NewArchiveService(archiveStore, store.AnnotationStore(), blobs),
		Annotation: services.NewAnnotationService(store.AnnotationStore(), tok),
		Index:      indexService,
		Settings:   settingsService,
	}, cleanup, nil
}
