package driven

// ConfigStore provides access to the optional configuration file.
// Keys are dotted paths such as "vector.provider".
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" if absent or not a string.
	GetString(key string) string

	// GetInt retrieves an integer value, or 0 if absent or not an integer.
	GetInt(key string) int

	// GetBool retrieves a boolean value, or false if absent or not a boolean.
	GetBool(key string) bool

	// Set stores a configuration value in memory.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage. A missing file is not an error.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
