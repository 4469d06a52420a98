package config

// Default configuration values.
const (
	DefaultPort      = 8765
	DefaultBackend   = "memory"
	DefaultStatePath = ".leaplineage/lineage.db"
	DefaultLogLevel  = "info"
)

// ApplyDefaults fills in default values for any unset fields.
func ApplyDefaults(c *Config) {
	if c == nil {
		return
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.State.Backend == "" {
		c.State.Backend = DefaultBackend
	}
	if c.State.Path == "" {
		c.State.Path = DefaultStatePath
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
