package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rileyhilliard/terminus/internal/errors"
)

// OutputFormats lists the accepted output.format values.
var OutputFormats = []string{"table", "json", "yaml"}

// ColorModes lists the accepted output.color values.
var ColorModes = []string{"auto", "always", "never"}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but terminus only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade terminus")
	}

	if strings.TrimSpace(cfg.API.Host) == "" {
		return errors.New(errors.ErrConfig,
			"api.host is empty",
			"Set api.host in the config file or TERMINUS_HOST in the environment")
	}
	if strings.Contains(cfg.API.Host, "://") || strings.Contains(cfg.API.Host, "/") {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("api.host '%s' should be a bare hostname", cfg.API.Host),
			"Drop the scheme and any path, e.g. dashboard.example.com")
	}

	if cfg.API.Port < 1 || cfg.API.Port > 65535 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("api.port %d is out of range", cfg.API.Port),
			"Use a port between 1 and 65535")
	}

	if cfg.API.Timeout <= 0 {
		return errors.New(errors.ErrConfig,
			"api.timeout must be positive",
			"Try something like 30s or 1m")
	}

	if !slices.Contains(OutputFormats, cfg.Output.Format) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown output.format '%s'", cfg.Output.Format),
			"Supported formats: "+strings.Join(OutputFormats, ", "))
	}

	if !slices.Contains(ColorModes, cfg.Output.Color) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown output.color '%s'", cfg.Output.Color),
			"Supported modes: "+strings.Join(ColorModes, ", "))
	}

	return nil
}
