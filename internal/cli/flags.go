package cli

import (
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/terminus/internal/config"
	"github.com/rileyhilliard/terminus/internal/errors"
	"github.com/rileyhilliard/terminus/internal/logger"
	"github.com/rileyhilliard/terminus/internal/output"
)

// GlobalFlags holds the flags every command accepts.
type GlobalFlags struct {
	ConfigPath string
	JSON       bool
	YAML       bool
	Debug      bool
	NoColor    bool

	// format is the configured default, set once the config is loaded.
	format output.Format
}

// AddGlobalFlags registers --config, --json, --yaml, --debug and --no-color
// as persistent flags on root.
func AddGlobalFlags(root *cobra.Command, flags *GlobalFlags) {
	pf := root.PersistentFlags()
	pf.StringVar(&flags.ConfigPath, "config", "", "config file (default ~/.config/terminus/config.yaml)")
	pf.BoolVar(&flags.JSON, "json", false, "output results as JSON wrapped in {success, data}")
	pf.BoolVar(&flags.YAML, "yaml", false, "output results as YAML wrapped in {success, data}")
	pf.BoolVar(&flags.Debug, "debug", false, "log requests and dump invocation state")
	pf.BoolVar(&flags.NoColor, "no-color", false, "disable colored output")
}

// apply validates the flag combination and turns on debug logging and
// monochrome output before any command runs.
func (f *GlobalFlags) apply() error {
	if f.JSON && f.YAML {
		return errors.New(errors.ErrConfig,
			"--json and --yaml cannot be used together",
			"Pick one machine-readable format.")
	}
	logger.SetDebug(f.Debug)
	if f.NoColor {
		colorMode(true, "")
	}
	return nil
}

// loadConfig reads the config file and applies its output defaults.
func (f *GlobalFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return nil, err
	}

	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid output format in config", "Use table, json or yaml")
	}
	f.format = format
	colorMode(f.NoColor, cfg.Output.Color)
	return cfg, nil
}

// outputFormat resolves the format: flags first, then the config default.
func (f *GlobalFlags) outputFormat() output.Format {
	switch {
	case f.JSON:
		return output.FormatJSON
	case f.YAML:
		return output.FormatYAML
	case f.format != "":
		return f.format
	default:
		return output.FormatTable
	}
}

// logger returns the logger for one invocation. Without --debug only
// warnings and errors reach the terminal.
func (f *GlobalFlags) logger(app *App) logger.Logger {
	base := logger.NewWriterLogger(app.Err, "[terminus]")
	if f.Debug {
		return base
	}
	return logger.WithLevel(base, logger.LevelWarn)
}
