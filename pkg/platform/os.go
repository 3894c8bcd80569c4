// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// This package centralizes platform-specific concerns such as OS name
// constants and executable naming conventions, so the rest of the codebase
// does not scatter runtime.GOOS string literals.
package platform

import "runtime"

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// IsWindows reports whether the current host is Windows.
func IsWindows() bool {
	return runtime.GOOS == Windows
}

// ExeSuffix returns the executable filename suffix for the current host
// (".exe" on Windows, empty elsewhere).
func ExeSuffix() string {
	if IsWindows() {
		return ".exe"
	}
	return ""
}
