package domain

import (
	"fmt"
	"time"
)

// Settings defaults.
const (
	DefaultUTCOffsetHours   = 8
	DefaultSearchLimit      = 50
	MaxSearchLimit          = 200
	MaxSearchOffset         = 20000
	DefaultListLimit        = 200
	MaxListLimit            = 1000
	DefaultMaxArchiveBytes  = int64(2) << 30
	DefaultMaxEntries       = 20000
	DefaultMaxNestedBytes   = int64(512) << 20
	DefaultMaxEntryBytes    = int64(256) << 20
	DefaultWatchDebounceSec = 2
)

// Settings is the typed application configuration.
type Settings struct {
	// LibraryRoot holds the database and stored archives.
	LibraryRoot string

	// UTCOffsetHours is the zone archive dates are computed in.
	UTCOffsetHours int

	// SearchLimit is the page size when a query does not give one.
	SearchLimit int

	Import ImportSettings
}

// ImportSettings caps resource use while reading archives.
type ImportSettings struct {
	MaxArchiveBytes int64
	MaxEntries      int
	MaxNestedBytes  int64
	MaxEntryBytes   int64
}

// DefaultSettings returns settings with defaults applied for root.
func DefaultSettings(root string) Settings {
	return Settings{
		LibraryRoot:    root,
		UTCOffsetHours: DefaultUTCOffsetHours,
		SearchLimit:    DefaultSearchLimit,
		Import: ImportSettings{
			MaxArchiveBytes: DefaultMaxArchiveBytes,
			MaxEntries:      DefaultMaxEntries,
			MaxNestedBytes:  DefaultMaxNestedBytes,
			MaxEntryBytes:   DefaultMaxEntryBytes,
		},
	}
}

// Location returns the fixed zone for archive dates.
func (s Settings) Location() *time.Location {
	return time.FixedZone("", s.UTCOffsetHours*3600)
}

// IndexKind names one of the full-text indexes.
type IndexKind string

// Index kinds.
const (
	IndexBlocks      IndexKind = "blocks"
	IndexFields      IndexKind = "fields"
	IndexAttachments IndexKind = "attachments"
	IndexAnnotations IndexKind = "annotations"
)

// IndexKinds lists every index.
var IndexKinds = []IndexKind{IndexBlocks, IndexFields, IndexAttachments, IndexAnnotations}

// IndexStat compares an index with its source table.
type IndexStat struct {
	Kind       IndexKind `json:"kind"`
	SourceRows int       `json:"source_rows"`
	IndexRows  int       `json:"index_rows"`
	Rebuilt    bool      `json:"rebuilt"`
}

// InSync reports whether the counts agree.
func (s IndexStat) InSync() bool {
	return s.SourceRows == s.IndexRows
}

// DayLayout is the date format accepted by date filters.
const DayLayout = "2006-01-02"

// ParseDayRange turns inclusive YYYY-MM-DD bounds into unix seconds in loc.
// from maps to the start of its day and to the last second of its day. An
// empty bound stays nil.
func ParseDayRange(from, to string, loc *time.Location) (*int64, *int64, error) {
	var lo, hi *int64
	if from != "" {
		d, err := time.ParseInLocation(DayLayout, from, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidInput, from)
		}
		v := d.Unix()
		lo = &v
	}
	if to != "" {
		d, err := time.ParseInLocation(DayLayout, to, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidInput, to)
		}
		v := d.AddDate(0, 0, 1).Unix() - 1
		hi = &v
	}
	if lo != nil && hi != nil && *lo > *hi {
		return nil, nil, fmt.Errorf("%w: %s is after %s", ErrInvalidInput, from, to)
	}
	return lo, hi, nil
}
