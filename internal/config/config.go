// Package config holds the settings of the metsim tool itself.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/HansKimDWR/MetSim/internal/document"
	"github.com/HansKimDWR/MetSim/internal/env"
)

// LogLevel specifies the logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat specifies the log output format.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// Environment variables that override file settings.
const (
	EnvLogLevel     = "METSIM_LOG_LEVEL"
	EnvLogFormat    = "METSIM_LOG_FORMAT"
	EnvLogFile      = "METSIM_LOG_FILE"
	EnvDebug        = "METSIM_DEBUG"
	EnvOutputFormat = "METSIM_OUTPUT_FORMAT"
)

// DirName is the per-user and per-project settings directory.
const DirName = ".metsim"

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  LogLevel  `toml:"level"`
	Format LogFormat `toml:"format"`
	File   string    `toml:"file"`
}

// OutputConfig holds settings for rendered documents.
type OutputConfig struct {
	// Format is the document format `metsim show` prints when --format is
	// not given.
	Format string `toml:"format"`
}

// Config is the main configuration struct for the metsim tool.
type Config struct {
	Version string        `toml:"version"`
	Logging LoggingConfig `toml:"logging"`
	Output  OutputConfig  `toml:"output"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Version: "1",
		Logging: LoggingConfig{
			Level:  LogLevelWarn,
			Format: LogFormatText,
			File:   "",
		},
		Output: OutputConfig{
			Format: string(document.FormatYAML),
		},
	}
}

// Load reads the settings file at path over the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.merge(path, "config"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir resolves the settings for a run directory. Sources apply in
// order, later ones overriding earlier ones:
// defaults -> ~/.metsim/config.toml -> <dir>/.metsim/config.toml -> environment.
func LoadFromDir(dir string) (*Config, error) {
	cfg := Default()

	if home, err := os.UserHomeDir(); err == nil {
		if err := cfg.merge(filepath.Join(home, DirName, "config.toml"), "global config"); err != nil {
			return nil, err
		}
	}
	if err := cfg.merge(filepath.Join(dir, DirName, "config.toml"), "project config"); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge decodes the TOML file at path over c. Keys absent from the file keep
// their current value; a missing file changes nothing.
func (c *Config) merge(path, label string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", label, err)
	}
	if _, err := toml.Decode(string(data), c); err != nil {
		return fmt.Errorf("parsing %s %s: %w", label, path, err)
	}
	return nil
}

// ApplyEnv overrides settings from METSIM_* environment variables.
func (c *Config) ApplyEnv() error {
	c.Logging.Level = LogLevel(env.String(EnvLogLevel, string(c.Logging.Level)))
	c.Logging.Format = LogFormat(env.String(EnvLogFormat, string(c.Logging.Format)))
	c.Logging.File = env.String(EnvLogFile, c.Logging.File)
	c.Output.Format = env.String(EnvOutputFormat, c.Output.Format)

	debug, err := env.Bool(EnvDebug, false)
	if err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	if debug {
		c.Logging.Level = LogLevelDebug
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("config version is required")
	}
	switch c.Logging.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case LogFormatJSON, LogFormatText:
	default:
		return fmt.Errorf("logging.format %q must be json or text", c.Logging.Format)
	}
	if _, err := document.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	return nil
}

// OutputFormat returns the default document format for rendered output.
func (c *Config) OutputFormat() document.Format {
	f, err := document.ParseFormat(c.Output.Format)
	if err != nil {
		return document.FormatYAML
	}
	return f
}

// LogFile returns the absolute log file path, or "" when file logging is off.
func (c *Config) LogFile(baseDir string) string {
	if c.Logging.File == "" {
		return ""
	}
	if filepath.IsAbs(c.Logging.File) {
		return c.Logging.File
	}
	return filepath.Join(baseDir, c.Logging.File)
}
