package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driven"
	"github.com/custodia-labs/archivevault/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyLibraryRoot     = "library.root"
	keyUTCOffsetHours  = "library.utc_offset_hours"
	keyMaxArchiveBytes = "import.max_archive_bytes"
	keyMaxEntries      = "import.max_entries"
	keyMaxNestedBytes  = "import.max_nested_bytes"
	keyMaxEntryBytes   = "import.max_entry_bytes"
	keySearchLimit     = "search.default_limit"
)

// ArchiveCounter reports how many archives the current library holds.
type ArchiveCounter func(ctx context.Context) (int, error)

// SettingsService manages application settings and owns the library root.
type SettingsService struct {
	configStore driven.ConfigStore
	defaultRoot string

	mu       sync.Mutex
	counter  ArchiveCounter
	override string
}

// NewSettingsService creates a new settings service. defaultRoot is used
// when the configuration names no library.
func NewSettingsService(configStore driven.ConfigStore, defaultRoot string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		defaultRoot: defaultRoot,
	}
}

// SetArchiveCounter sets the check SetLibraryRoot uses to refuse switching
// away from a library that holds data.
func (s *SettingsService) SetArchiveCounter(counter ArchiveCounter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter = counter
}

// OverrideLibraryRoot uses root for this process without persisting it.
func (s *SettingsService) OverrideLibraryRoot(root string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = root
}

// Get retrieves current application settings.
func (s *SettingsService) Get() domain.Settings {
	settings := domain.DefaultSettings(s.LibraryRoot())

	settings.UTCOffsetHours = s.getIntInRange(keyUTCOffsetHours, settings.UTCOffsetHours, -12, 14)
	settings.SearchLimit = s.getIntInRange(keySearchLimit, settings.SearchLimit, 1, domain.MaxSearchLimit)
	settings.Import.MaxArchiveBytes = s.getInt64(keyMaxArchiveBytes, settings.Import.MaxArchiveBytes)
	settings.Import.MaxEntries = s.getIntInRange(keyMaxEntries, settings.Import.MaxEntries, 1, 1<<30)
	settings.Import.MaxNestedBytes = s.getInt64(keyMaxNestedBytes, settings.Import.MaxNestedBytes)
	settings.Import.MaxEntryBytes = s.getInt64(keyMaxEntryBytes, settings.Import.MaxEntryBytes)

	return settings
}

// LibraryRoot returns the directory holding the database and stored archives.
func (s *SettingsService) LibraryRoot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.libraryRoot()
}

func (s *SettingsService) libraryRoot() string {
	if s.override != "" {
		return s.override
	}
	if root := s.configStore.GetString(keyLibraryRoot); root != "" {
		return root
	}
	return s.defaultRoot
}

// SetLibraryRoot persists a new library root.
func (s *SettingsService) SetLibraryRoot(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty library root", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving library root: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if filepath.Clean(s.libraryRoot()) == abs {
		return nil
	}
	if s.counter != nil {
		n, err := s.counter(ctx)
		if err != nil {
			return fmt.Errorf("checking current library: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%w: %d archives in %s", domain.ErrLibraryInUse, n, s.libraryRoot())
		}
	}

	if err := s.configStore.Set(keyLibraryRoot, abs); err != nil {
		return fmt.Errorf("save library root: %w", err)
	}
	s.override = ""
	return nil
}

// SetUTCOffset changes the zone archive dates are computed in.
func (s *SettingsService) SetUTCOffset(hours int) error {
	if hours < -12 || hours > 14 {
		return fmt.Errorf("%w: utc offset %d out of range", domain.ErrInvalidInput, hours)
	}
	if err := s.configStore.Set(keyUTCOffsetHours, hours); err != nil {
		return fmt.Errorf("save utc offset: %w", err)
	}
	return nil
}

// SetSearchLimit changes the default page size.
func (s *SettingsService) SetSearchLimit(limit int) error {
	if limit < 1 || limit > domain.MaxSearchLimit {
		return fmt.Errorf("%w: search limit must be between 1 and %d", domain.ErrInvalidInput, domain.MaxSearchLimit)
	}
	if err := s.configStore.Set(keySearchLimit, limit); err != nil {
		return fmt.Errorf("save search limit: %w", err)
	}
	return nil
}

// getIntInRange returns the stored value, or the default when it is absent
// or outside [lo, hi]. Zero is a valid stored value.
func (s *SettingsService) getIntInRange(key string, defaultVal, lo, hi int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	v := s.configStore.GetInt(key)
	if v < lo || v > hi {
		return defaultVal
	}
	return v
}

// getInt64 returns a positive stored value or the default.
func (s *SettingsService) getInt64(key string, defaultVal int64) int64 {
	if v := int64(s.configStore.GetInt(key)); v > 0 {
		return v
	}
	return defaultVal
}
