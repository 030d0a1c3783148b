package driving

import (
	"context"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the current settings with defaults applied.
	Get() domain.Settings

	// LibraryRoot returns the directory holding the database and stored archives.
	LibraryRoot() string

	// SetLibraryRoot points the application at another library. Refused with
	// domain.ErrLibraryInUse while the current library holds archives.
	// Takes effect on the next start.
	SetLibraryRoot(ctx context.Context, path string) error

	// SetUTCOffset changes the zone archive dates are computed in.
	SetUTCOffset(hours int) error

	// SetSearchLimit changes the default page size.
	SetSearchLimit(limit int) error
}
