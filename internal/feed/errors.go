package feed

import (
	"fmt"
	"net/http"
)

// TransportError means the request did not complete or the feed answered with a
// non-success status.
type TransportError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError means the payload was not XML or a vehicle element was incomplete.
type ParseError struct {
	Index   int    // Vehicle element position, -1 for document-level failures
	Code    string // TrainCode when it was present
	Missing string // Name of the missing child element
	Err     error
}

func (e *ParseError) Error() string {
	switch {
	case e.Missing != "" && e.Code != "":
		return fmt.Sprintf("parse feed: train %d (%s): missing %s element", e.Index, e.Code, e.Missing)
	case e.Missing != "":
		return fmt.Sprintf("parse feed: train %d: missing %s element", e.Index, e.Missing)
	}
	return fmt.Sprintf("parse feed: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
