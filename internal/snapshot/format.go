package snapshot

import (
	"strings"
	"time"
)

// Naming and column layout of snapshot files.
const (
	FilePrefix = "trains_"
	FileSuffix = ".csv"

	// FileTimeLayout avoids ':' and ' ' so names are portable.
	FileTimeLayout = "20060102T150405.000000Z"

	// ColumnTimeLayout is used for the datetime column.
	ColumnTimeLayout = time.RFC3339Nano
)

// Header is the expected header row; the first cell is the unnamed index column.
var Header = []string{
	"",
	"train_code",
	"train_status",
	"train_latitude",
	"train_longitude",
	"train_direction",
	"datetime",
}

// FileName returns the snapshot file name for a poll taken at polledAt.
func FileName(polledAt time.Time) string {
	return FilePrefix + polledAt.UTC().Format(FileTimeLayout) + FileSuffix
}

// IsSnapshotFile reports whether name follows the snapshot naming convention.
// Only prefix and suffix are checked so files from older layouts still match.
func IsSnapshotFile(name string) bool {
	return strings.HasPrefix(name, FilePrefix) && strings.HasSuffix(name, FileSuffix)
}

// timestampLayouts are tried in order when coercing the datetime column.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// parseTimestamp coerces a datetime cell. Layouts without a zone are read in loc.
func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		ts, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return ts, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
