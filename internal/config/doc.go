// Package config defines the settings used by the findme binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Validate fills in defaults for every unset field, so a missing or empty
// settings file yields a usable configuration.
package config
