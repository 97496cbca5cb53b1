// Package version records build-time version information.
package version

// Set at build time via -ldflags.
var (
	// Version is the semantic version of the scrm tool.
	Version = "0.1.0"

	// GitCommit is the git commit the binary was built from.
	GitCommit = "unknown"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)
