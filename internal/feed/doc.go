// Package feed provides the Irish Rail realtime API client.
//
// Endpoints:
//   - Base: http://api.irishrail.ie/realtime/ (also the XML namespace of every element)
//   - Current train positions: realtime.asmx/getCurrentTrainsXML
//
// One call is one poll. The client never retries: a failed call is a gap in the
// collected data, and the caller decides what to log.
package feed
