package version

import "fmt"

// Version contains the application version information, set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/psalter/internal/version.Version=v1.0.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by the CLI.
func String() string {
	return fmt.Sprintf("psalter %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
