// Package poller implements the Poll Scheduler and the Collector it drives.
//
// The scheduler:
//   - Fires the task immediately, then every interval (s, m, h or d units)
//   - Never fires at or after the end time, and returns once it is reached
//   - Sleeps until the next due time rather than spinning
//   - Logs and counts task failures without ending the run
//
// The collector fetches one snapshot per fire and hands it to each
// SnapshotHandler in order (CSV writer first, then optional sinks).
package poller
