// Package version holds build metadata injected via ldflags.
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build metadata for logs and the User-Agent.
func String() string {
	return fmt.Sprintf("manualrag/%s (%s, %s)", Version, Commit, Date)
}
