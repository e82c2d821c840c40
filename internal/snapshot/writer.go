package snapshot

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rickgao/rail-data/internal/model"
)

// Writer persists each poll as its own CSV file in one directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer for dir. The directory is created on first write.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, logger: logger}
}

// Dir returns the snapshot directory.
func (w *Writer) Dir() string {
	return w.dir
}

// HandleSnapshot writes snap to disk.
func (w *Writer) HandleSnapshot(_ context.Context, snap model.Snapshot) error {
	path, err := w.Write(snap.Records, snap.PolledAt)
	if err != nil {
		return err
	}
	w.logger.Info("snapshot written",
		"path", path,
		"records", len(snap.Records),
		"snapshot_id", snap.ID,
	)
	return nil
}

// Write serializes records with polledAt as the datetime column and returns the
// file path. A file with the same poll time is silently replaced.
func (w *Writer) Write(records []model.PositionRecord, polledAt time.Time) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(w.dir, FileName(polledAt))

	// Write beside the target and rename so readers never see partial files.
	tmp, err := os.CreateTemp(w.dir, "."+FilePrefix+"*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp snapshot: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := encode(tmp, records, polledAt); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return "", fmt.Errorf("chmod snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		committed = true
		return "", fmt.Errorf("rename snapshot: %w", err)
	}
	committed = true

	return path, nil
}

func encode(f *os.File, records []model.PositionRecord, polledAt time.Time) error {
	cw := csv.NewWriter(f)
	if err := cw.Write(Header); err != nil {
		return err
	}

	ts := polledAt.Format(ColumnTimeLayout)
	for i, r := range records {
		row := []string{
			strconv.Itoa(i),
			r.TrainCode,
			r.Status,
			r.Latitude,
			r.Longitude,
			r.Direction,
			ts,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
