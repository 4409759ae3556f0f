// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride replaces ConfigDir's platform lookup when set. Tests
// use it to write and read config.cue without touching the real user
// config, and without depending on how the platform resolves the home
// directory.
var configDirOverride string

// Reset clears the config directory override.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride makes ConfigDir, CreateDefaultConfig and Save use
// dir. Callers must Reset when done; the override is process-wide.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
