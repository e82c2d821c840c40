// Package live serves the latest snapshot over HTTP and WebSocket.
//
// The Hub is a poller.SnapshotHandler: the collector hands it each new
// snapshot, which it keeps as the latest and pushes to every connected
// WebSocket client as JSON. Server exposes the hub alongside health and
// Prometheus endpoints.
package live
