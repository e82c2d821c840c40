// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Poll outcomes and durations
//   - Records per snapshot and in total
//   - Time of the last successful poll
//   - Live server request counts
package metrics
