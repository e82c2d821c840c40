package snapshot

import "fmt"

// FileFormatError means a snapshot file could not be read back. Aggregation skips
// such files.
type FileFormatError struct {
	Path string
	Line int // 0 when the failure is not tied to a line
	Err  error
}

func (e *FileFormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("snapshot %s line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("snapshot %s: %v", e.Path, e.Err)
}

func (e *FileFormatError) Unwrap() error {
	return e.Err
}
