// Package config loads, normalizes, and validates the TOML configuration
// for the distill pipeline.
package config
