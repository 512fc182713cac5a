// Package contracts carries the version identity stamped on every converter
// output, so a written session can always be traced back to the code that
// produced it.
package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current version of the converter
	Version = "0.1.0"

	// DataFormatVersion is the version of the written session layout
	DataFormatVersion = "v1"
)

var (
	// GitCommit is set during build using ldflags
	GitCommit = "unknown"
)

// GetVersionString returns a formatted version string
func GetVersionString() string {
	return fmt.Sprintf("neuroconv v%s", Version)
}

// GetFullVersionString returns a detailed version string
func GetFullVersionString() string {
	return fmt.Sprintf("%s (commit: %s, go: %s, os: %s/%s)",
		GetVersionString(), GitCommit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
