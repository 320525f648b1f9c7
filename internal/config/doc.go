// Package config loads and validates bdpl's TOML configuration: analysis
// thresholds, cache and log locations, and logging behavior. Absent files
// fall back to repository defaults so the tool runs unconfigured.
package config
