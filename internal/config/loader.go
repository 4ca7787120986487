package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/terminus/internal/errors"
	"github.com/spf13/viper"
)

const (
	// GlobalConfigDir is the directory for the user config, relative to $HOME.
	GlobalConfigDir = ".config/terminus"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix namespaces environment overrides (TERMINUS_HOST, ...).
	EnvPrefix = "TERMINUS"
)

// Load reads config from path. An empty path means "find it": the global
// config file is used when present, otherwise defaults plus environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	found, err := Find(path)
	if err != nil {
		return nil, err
	}

	if found != "" {
		v.SetConfigFile(found)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check "+found+" exists and is valid YAML")
		}
	}

	return parseConfig(v, found)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. ~/.config/terminus/config.yaml
//
// Returns the empty string when no file exists.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", nil
	}

	global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
	if _, err := os.Stat(global); err == nil {
		return global, nil
	}
	return "", nil
}

// setDefaults mirrors DefaultConfig so viper merges file values over them.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("api.host", def.API.Host)
	v.SetDefault("api.port", def.API.Port)
	v.SetDefault("api.timeout", def.API.Timeout.String())
	v.SetDefault("api.insecure_skip_verify", false)
	v.SetDefault("cache.dir", def.Cache.Dir)
	v.SetDefault("output.format", def.Output.Format)
	v.SetDefault("output.color", def.Output.Color)
}

// bindEnv wires TERMINUS_* variables. TERMINUS_HOST and TERMINUS_PORT keep
// their historical short names.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api.host", EnvPrefix+"_HOST", EnvPrefix+"_API_HOST")
	_ = v.BindEnv("api.port", EnvPrefix+"_PORT", EnvPrefix+"_API_PORT")
	_ = v.BindEnv("cache.dir", EnvPrefix+"_CACHE_DIR")
}

// parseConfig converts viper config to our Config struct.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		where := "your environment"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the values in "+where)
	}

	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultCacheDir prefers XDG_CACHE_HOME, falling back to ~/.cache.
func defaultCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "terminus")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "terminus")
	}
	return filepath.Join(home, ".cache", "terminus")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
