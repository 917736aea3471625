// Package version provides build-time version information.
package version

import "fmt"

// Set at build time with -ldflags "-X chart-digitizer/internal/version.Version=...".
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns the version with its commit, e.g. "0.1.0 (abc1234)".
func String() string {
	if GitCommit == "" || GitCommit == "unknown" {
		return Version
	}
	short := GitCommit
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("%s (%s)", Version, short)
}
