// Package gtfsrt publishes snapshots as a GTFS-Realtime VehiclePositions feed.
//
// Each poll replaces a single protobuf file so that GTFS-RT consumers can read
// the latest positions without understanding the CSV snapshot layout.
package gtfsrt
