// Package database provides the optional PostgreSQL position store.
//
// Every snapshot is appended to the train_positions table, one row per record,
// tagged with the snapshot's poll_id. Rows are never updated or deleted.
// Coordinates are stored as text exactly as the feed reported them.
package database
