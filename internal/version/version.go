// Package version provides build-time version information for the
// serving host and CLIs.
package version

// Set at build time via -ldflags.
var (
	// Version is the semantic version.
	Version = "0.1.0"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"
)

// String returns version plus commit for logs and health output.
func String() string {
	return Version + " (" + GitCommit + ")"
}
