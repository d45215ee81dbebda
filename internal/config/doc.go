// Package config loads, validates, and normalizes the TOML configuration
// shared by every yomu subsystem.
//
// Load resolves the config path (explicit flag, then the XDG default, then a
// project-local yomu.toml), applies defaults for missing values, expands ~ in
// path fields, and rejects unusable values before any other package runs.
package config
