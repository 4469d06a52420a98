// Package config provides configuration management for leaplineage.
// Values are layered from defaults, an optional YAML file, environment
// variables, and CLI flags, in ascending precedence.
package config

// ServerConfig holds configuration for the HTTP API server.
type ServerConfig struct {
	Port int  `koanf:"port"`
	Demo bool `koanf:"demo"`
}

// StateConfig selects and configures the lineage store backend.
type StateConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `koanf:"backend"`

	// Path is the SQLite database file. Ignored by the memory backend.
	Path string `koanf:"path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`
}

// Config holds all configuration options.
type Config struct {
	Server ServerConfig `koanf:"server"`
	State  StateConfig  `koanf:"state"`
	Log    LogConfig    `koanf:"log"`
}
