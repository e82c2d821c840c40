package model

import (
	"math"
	"slices"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Poll Types
// -----------------------------------------------------------------------------

// PositionRecord is one train's reported state at one poll.
type PositionRecord struct {
	TrainCode string    // Vehicle code (e.g., "A101")
	Status    string    // Free-form upstream status (Irish Rail: N, R, T)
	Latitude  string    // As provided upstream, "0" = unknown
	Longitude string    // As provided upstream, "0" = unknown
	Direction string    // Free-form (e.g., "Northbound")
	Timestamp time.Time // Poll timestamp
}

// Lat parses the latitude string.
func (r PositionRecord) Lat() (float64, error) {
	return strconv.ParseFloat(r.Latitude, 64)
}

// Lon parses the longitude string.
func (r PositionRecord) Lon() (float64, error) {
	return strconv.ParseFloat(r.Longitude, 64)
}

// HasKnownPosition reports whether the record carries a usable coordinate pair.
// The feed reports 0,0 for trains it cannot place. Non-finite or out-of-range
// values are treated the same way.
func (r PositionRecord) HasKnownPosition() bool {
	lat, err := r.Lat()
	if err != nil || !inRange(lat, 90) {
		return false
	}
	lon, err := r.Lon()
	if err != nil || !inRange(lon, 180) {
		return false
	}
	return lat != 0 || lon != 0
}

func inRange(v, limit float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) <= limit
}

// Snapshot is the full set of records captured during one poll.
type Snapshot struct {
	ID       uuid.UUID // Assigned per poll
	PolledAt time.Time // Captured before the request was sent
	Records  []PositionRecord
}

// NewSnapshot stamps every record with polledAt and assigns a fresh ID.
func NewSnapshot(polledAt time.Time, records []PositionRecord) Snapshot {
	for i := range records {
		records[i].Timestamp = polledAt
	}
	return Snapshot{
		ID:       uuid.New(),
		PolledAt: polledAt,
		Records:  records,
	}
}

// -----------------------------------------------------------------------------
// Aggregated Types
// -----------------------------------------------------------------------------

// Dataset is the concatenation of every readable snapshot file.
type Dataset struct {
	Records []PositionRecord
	Skipped []string // Snapshot files that could not be read
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Timestamps returns the distinct poll timestamps in ascending order.
func (d *Dataset) Timestamps() []time.Time {
	seen := make(map[int64]struct{})
	var out []time.Time
	for _, r := range d.Records {
		key := r.Timestamp.UnixNano()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r.Timestamp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// At returns the records captured at ts.
func (d *Dataset) At(ts time.Time) []PositionRecord {
	var out []PositionRecord
	for _, r := range d.Records {
		if r.Timestamp.Equal(ts) {
			out = append(out, r)
		}
	}
	return out
}

// KnownPositions returns a copy of the dataset without rows at 0,0.
func (d *Dataset) KnownPositions() *Dataset {
	out := &Dataset{
		Records: make([]PositionRecord, 0, len(d.Records)),
		Skipped: slices.Clone(d.Skipped),
	}
	for _, r := range d.Records {
		if r.HasKnownPosition() {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// TrainCodes returns distinct train codes in first-appearance order.
func (d *Dataset) TrainCodes() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range d.Records {
		if _, ok := seen[r.TrainCode]; ok {
			continue
		}
		seen[r.TrainCode] = struct{}{}
		out = append(out, r.TrainCode)
	}
	return out
}

// SortByTime orders records chronologically, keeping listing order within a poll.
func (d *Dataset) SortByTime() {
	sort.SliceStable(d.Records, func(i, j int) bool {
		return d.Records[i].Timestamp.Before(d.Records[j].Timestamp)
	})
}
