// Package version holds build version information.
package version

// Version is the current Kazadigate release. Overridden at build time via
// -ldflags "-X github.com/falub/kazadigate/internal/version.Version=..."
var Version = "0.2.0"
