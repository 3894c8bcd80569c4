// SPDX-License-Identifier: MPL-2.0

package config

// Package-level overrides, set by the CLI layer (--config) and by tests.
// They are read once per Load call; no caching happens here.
var (
	configDirOverride      string
	configFilePathOverride string
)

// SetConfigFilePathOverride makes Load read the given file instead of the
// platform-default location. An empty value restores the default.
func SetConfigFilePathOverride(path string) {
	configFilePathOverride = path
}

// SetConfigDirOverride redirects the config directory. Used by tests.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
