package gtfsrt

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"google.golang.org/protobuf/proto"

	"github.com/rickgao/rail-data/internal/model"
)

// Exporter writes the latest snapshot to a protobuf file.
type Exporter struct {
	path   string
	logger *slog.Logger
}

// NewExporter creates an Exporter writing to path.
func NewExporter(path string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{path: path, logger: logger}
}

// Path returns the output file.
func (e *Exporter) Path() string {
	return e.path
}

// HandleSnapshot replaces the output file with snap encoded as a feed message.
func (e *Exporter) HandleSnapshot(_ context.Context, snap model.Snapshot) error {
	data, err := proto.Marshal(BuildFeed(snap))
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}
	if err := writeAtomic(e.path, data); err != nil {
		return fmt.Errorf("write feed %s: %w", e.path, err)
	}

	e.logger.Debug("gtfs-rt feed written",
		"path", e.path,
		"entities", len(snap.Records),
		"bytes", len(data),
	)
	return nil
}

// writeAtomic writes data next to path and renames it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
