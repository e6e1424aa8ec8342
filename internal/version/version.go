// Package version carries the build identity stamped in by ldflags.
package version

import "fmt"

// Set at build time via -ldflags "-X ...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the version, commit and build date.
func Info() (string, string, string) {
	return Version, GitCommit, BuildDate
}

// String renders the build identity on one line, the form printed by
// --version and logged at server start.
func String() string {
	return fmt.Sprintf("barkit %s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
