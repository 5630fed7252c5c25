// Package config handles configuration management for jtd.
// Configuration is layered: embedded defaults, then the user's config.toml,
// then JTD_* environment variables, then command-line overrides.
package config
