// Package config defines the bridge configuration and provides helpers
// to load and validate it from a YAML file with environment overrides.
//
// Every field has a default, so the bridge runs without a configuration
// file at all; environment variables win over file values.
package config
