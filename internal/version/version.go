package version

import "fmt"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GetVersion returns the semantic version populated via -ldflags.
func GetVersion() string { return version }

// String returns the full build identification line.
func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}
