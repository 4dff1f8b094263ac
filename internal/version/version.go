// Package version exposes build-time version information.
package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags at build time.
var (
	Version  = "0.0.0-dev"
	Revision = "unknown"
)

// GetVersionString returns a human-readable version string.
func GetVersionString() string {
	return fmt.Sprintf("%s+%s (%s %s/%s)", Version, Revision, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
