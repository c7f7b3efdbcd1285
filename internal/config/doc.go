// Package config loads, normalizes, and validates subfetch configuration.
//
// Configuration is TOML. Load searches an explicit path, then
// ~/.config/subfetch/config.toml, then ./subfetch.toml, and falls back to
// Default when none exists. Paths are expanded, extension lists are
// normalized to lowercase with a leading dot, and the destination subfolder
// is reduced to a single path segment before validation runs.
package config
