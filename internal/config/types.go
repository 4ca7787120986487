package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
const CurrentConfigVersion = 1

// Default API endpoint. Overridable with TERMINUS_HOST / TERMINUS_PORT.
const (
	DefaultHost    = "dashboard.getpantheon.com"
	DefaultPort    = 443
	DefaultTimeout = 30 * time.Second
)

// Config represents the terminus configuration file.
type Config struct {
	Version int          `yaml:"version" mapstructure:"version"`
	API     APIConfig    `yaml:"api" mapstructure:"api"`
	Cache   CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Output  OutputConfig `yaml:"output" mapstructure:"output"`
}

// APIConfig locates the management API.
type APIConfig struct {
	// Host is the API hostname, without scheme or port.
	Host string `yaml:"host" mapstructure:"host"`

	// Port is the HTTPS port.
	Port int `yaml:"port" mapstructure:"port"`

	// Timeout bounds every request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// InsecureSkipVerify disables TLS certificate checks. Always on for
	// onebox development hosts.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// CacheConfig controls where cached blobs (session, sites) live.
type CacheConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Format for structured results: "table", "json", or "yaml".
	Format string `yaml:"format" mapstructure:"format"`

	// Color mode: "auto", "always", or "never".
	Color string `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		API: APIConfig{
			Host:    DefaultHost,
			Port:    DefaultPort,
			Timeout: DefaultTimeout,
		},
		Cache: CacheConfig{
			Dir: defaultCacheDir(),
		},
		Output: OutputConfig{
			Format: "table",
			Color:  "auto",
		},
	}
}
