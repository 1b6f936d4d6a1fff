// Package version exposes build metadata for startup logs and the CLI.
package version

// Overridden at build time with
// -ldflags "-X .../internal/version.Version=v1.2.3".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build metadata as a single identifier.
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
