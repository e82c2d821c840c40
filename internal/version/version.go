// Package version holds build information stamped in with ldflags:
//
//	go build -ldflags "-X github.com/rickgao/rail-data/internal/version.Version=0.3.0 \
//	                   -X github.com/rickgao/rail-data/internal/version.Commit=$(git rev-parse --short HEAD)" ./cmd/...
package version

import "runtime/debug"

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// LogAttrs returns the build information as slog key/value pairs.
// Commit falls back to the VCS revision recorded by the Go toolchain.
func LogAttrs() []any {
	commit := Commit
	if commit == "unknown" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					commit = s.Value[:7]
				}
			}
		}
	}
	return []any{"version", Version, "commit", commit, "build_time", BuildTime}
}

// String returns a one-line version string.
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}
