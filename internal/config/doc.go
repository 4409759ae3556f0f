// SPDX-License-Identifier: MPL-2.0

// Package config handles procutil configuration using Viper with CUE as the file format.
//
// Configuration is loaded from $XDG_CONFIG_HOME/procutil/config.cue on Linux
// (~/Library/Application Support/procutil/config.cue on macOS), or from a
// path given with --config. A config.cue in the working directory is used
// when the user config directory has none.
//
// Files are validated against the embedded schema (config_schema.cue) before
// being merged over the defaults.
package config
