package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/rail-data/internal/model"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS train_positions (
	poll_id         UUID        NOT NULL,
	polled_at       TIMESTAMPTZ NOT NULL,
	row_index       INTEGER     NOT NULL,
	train_code      TEXT        NOT NULL,
	train_status    TEXT        NOT NULL,
	train_latitude  TEXT        NOT NULL,
	train_longitude TEXT        NOT NULL,
	train_direction TEXT        NOT NULL
);
CREATE INDEX IF NOT EXISTS train_positions_polled_at_idx ON train_positions (polled_at);
CREATE INDEX IF NOT EXISTS train_positions_code_idx ON train_positions (train_code, polled_at);
`

const insertSQL = `
	INSERT INTO train_positions (poll_id, polled_at, row_index, train_code, train_status, train_latitude, train_longitude, train_direction)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

// positionRow is one row of the train_positions table.
type positionRow struct {
	PollID    uuid.UUID
	PolledAt  time.Time
	RowIndex  int
	Code      string
	Status    string
	Latitude  string
	Longitude string
	Direction string
}

// StoreMetrics counts store activity.
type StoreMetrics struct {
	Inserts int64
	Batches int64
	Errors  int64
}

// PositionStore appends snapshots to train_positions.
type PositionStore struct {
	db      DB
	logger  *slog.Logger
	metrics StoreMetrics
}

// NewPositionStore creates a PositionStore on db.
func NewPositionStore(db DB, logger *slog.Logger) *PositionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PositionStore{db: db, logger: logger}
}

// EnsureSchema creates the table and indexes if they do not exist.
func (s *PositionStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create train_positions: %w", err)
	}
	return nil
}

// Stats returns current metrics.
func (s *PositionStore) Stats() StoreMetrics {
	return s.metrics
}

// HandleSnapshot inserts every record of snap in one batch.
func (s *PositionStore) HandleSnapshot(ctx context.Context, snap model.Snapshot) error {
	rows := transform(snap)
	if len(rows) == 0 {
		return nil
	}

	start := time.Now()
	if err := s.batchInsert(ctx, rows); err != nil {
		s.metrics.Errors++
		s.logger.Error("batch insert failed", "error", err, "count", len(rows))
		return fmt.Errorf("store snapshot %s: %w", snap.ID, err)
	}

	s.metrics.Inserts += int64(len(rows))
	s.metrics.Batches++

	s.logger.Debug("stored positions",
		"count", len(rows),
		"snapshot_id", snap.ID,
		"duration", time.Since(start),
	)
	return nil
}

// transform converts a snapshot to table rows.
func transform(snap model.Snapshot) []positionRow {
	rows := make([]positionRow, len(snap.Records))
	for i, r := range snap.Records {
		rows[i] = positionRow{
			PollID:    snap.ID,
			PolledAt:  snap.PolledAt,
			RowIndex:  i,
			Code:      r.TrainCode,
			Status:    r.Status,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Direction: r.Direction,
		}
	}
	return rows
}

// batchInsert inserts rows using pgx.Batch.
func (s *PositionStore) batchInsert(ctx context.Context, rows []positionRow) error {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(insertSQL, r.PollID, r.PolledAt, r.RowIndex, r.Code, r.Status, r.Latitude, r.Longitude, r.Direction)
	}

	results := s.db.SendBatch(ctx, batch)
	for range rows {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return err
		}
	}
	return results.Close()
}
