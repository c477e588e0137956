// Package buildinfo carries version metadata stamped at build time via
// -ldflags "-X". Defaults identify an unstamped development build.
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the stamped metadata in the form the CLI reports.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
