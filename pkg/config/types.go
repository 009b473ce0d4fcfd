package config

// Config represents the persistent weft configuration stored as config.toml
// in the .weft/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Storage StorageConfig `toml:"storage"`
	Session SessionConfig `toml:"session"`
	API     APIConfig     `toml:"api"`
}

// StorageConfig holds snapshot persistence settings.
type StorageConfig struct {
	// Dir overrides the .weft/ directory used for the session snapshot.
	Dir string `toml:"dir,omitempty"`

	// File is the snapshot file name inside the storage directory.
	File string `toml:"file,omitempty"`
}

// SessionConfig holds session lifecycle settings.
type SessionConfig struct {
	// TTLHours is how long a persisted session stays restorable.
	TTLHours uint `toml:"ttl_hours,omitempty"`

	// DeadEndCap bounds the recorded dead-end list; oldest entries are
	// evicted first.
	DeadEndCap uint `toml:"dead_end_cap,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.dir": {
		get: func(c *Config) string { return c.Storage.Dir },
		set: func(c *Config, v string) error { c.Storage.Dir = v; return nil },
	},
	"storage.file": {
		get: func(c *Config) string { return c.Storage.File },
		set: func(c *Config, v string) error { c.Storage.File = v; return nil },
	},
	"session.ttl_hours": {
		get: func(c *Config) string { return formatUint(c.Session.TTLHours) },
		set: func(c *Config, v string) error {
			parsed, err := parseUint(v)
			if err != nil {
				return err
			}
			c.Session.TTLHours = parsed
			return nil
		},
	},
	"session.dead_end_cap": {
		get: func(c *Config) string { return formatUint(c.Session.DeadEndCap) },
		set: func(c *Config, v string) error {
			parsed, err := parseUint(v)
			if err != nil {
				return err
			}
			c.Session.DeadEndCap = parsed
			return nil
		},
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
}
