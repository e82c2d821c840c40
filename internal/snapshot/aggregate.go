package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/rickgao/rail-data/internal/model"
)

// AggregateOption configures Aggregate.
type AggregateOption func(*aggregateConfig)

type aggregateConfig struct {
	loc    *time.Location
	logger *slog.Logger
}

// WithLocation sets the zone used for datetime cells that carry no offset.
func WithLocation(loc *time.Location) AggregateOption {
	return func(c *aggregateConfig) {
		c.loc = loc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) AggregateOption {
	return func(c *aggregateConfig) {
		c.logger = logger
	}
}

// Aggregate reads every snapshot file in dir, in name order, into one dataset.
// Unreadable files are logged, listed in Dataset.Skipped, and left out.
func Aggregate(dir string, opts ...AggregateOption) (*model.Dataset, error) {
	cfg := aggregateConfig{loc: time.Local, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list snapshot dir: %w", err)
	}

	ds := &model.Dataset{}
	files := 0
	for _, e := range entries {
		if e.IsDir() || !IsSnapshotFile(e.Name()) {
			continue
		}
		files++

		path := filepath.Join(dir, e.Name())
		records, err := ReadFile(path, cfg.loc)
		if err != nil {
			cfg.logger.Warn("skipping snapshot file", "path", path, "error", err)
			ds.Skipped = append(ds.Skipped, path)
			continue
		}
		ds.Records = append(ds.Records, records...)
	}

	cfg.logger.Info("snapshots aggregated",
		"dir", dir,
		"files", files,
		"skipped", len(ds.Skipped),
		"records", ds.Len(),
	)
	return ds, nil
}

// ReadFile reads one snapshot file. Any failure is a *FileFormatError.
func ReadFile(path string, loc *time.Location) ([]model.PositionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileFormatError{Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &FileFormatError{Path: path, Err: errors.New("empty file")}
	}
	if err != nil {
		return nil, &FileFormatError{Path: path, Err: err}
	}
	// The index column's name is whatever the producer wrote; only data columns are checked.
	if !slices.Equal(header[1:], Header[1:]) {
		return nil, &FileFormatError{Path: path, Line: 1, Err: fmt.Errorf("unexpected header %q", header)}
	}

	var records []model.PositionRecord
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &FileFormatError{Path: path, Err: err}
		}

		line, _ := r.FieldPos(0)
		ts, err := parseTimestamp(row[6], loc)
		if err != nil {
			return nil, &FileFormatError{Path: path, Line: line, Err: fmt.Errorf("bad datetime %q: %w", row[6], err)}
		}

		records = append(records, model.PositionRecord{
			TrainCode: row[1],
			Status:    row[2],
			Latitude:  row[3],
			Longitude: row[4],
			Direction: row[5],
			Timestamp: ts,
		})
	}
	return records, nil
}
