// Package snapshot persists one CSV file per poll and reads the directory back as
// one consolidated dataset.
//
// File format:
//
//	,train_code,train_status,train_latitude,train_longitude,train_direction,datetime
//	0,A101,R,53.1,-6.2,Northbound,2024-01-15T12:00:00.123456Z
//
// The leading unnamed column is a per-file row index. Files are named
// trains_<UTC poll time>.csv with the time as 20060102T150405.000000Z, so name order
// is chronological order. Files are created once and never modified.
package snapshot
