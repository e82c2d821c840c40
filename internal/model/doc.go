// Package model defines shared data types used across the rail data collector.
//
// Conventions:
//   - Coordinates: decimal strings exactly as the Irish Rail feed reports them
//   - Timestamps: time.Time, one per poll, shared by every record of that poll
//   - IDs: uuid.UUID per snapshot (poll)
package model
