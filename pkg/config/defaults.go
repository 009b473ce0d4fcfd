package config

const (
	defaultSnapshotFile = "session.json"
	defaultTTLHours     = 24
	defaultDeadEndCap   = 20
	defaultAPIListen    = ":8091"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			File: defaultSnapshotFile,
		},
		Session: SessionConfig{
			TTLHours:   defaultTTLHours,
			DeadEndCap: defaultDeadEndCap,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
	}
}
