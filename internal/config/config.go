// Package config loads sfinspect settings from environment variables and an
// optional .env file, applies defaults and validates the result.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Logging LoggingConfig
	Input   InputConfig
	SQL     SQLConfig
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"SFINSPECT_LOG_LEVEL" envAlt:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"SFINSPECT_LOG_FORMAT" envAlt:"LOG_FORMAT" default:"text"`
}

// InputConfig holds settings for reading inspection files.
type InputConfig struct {
	// Sheet is the XLSX sheet to read (default: first sheet)
	Sheet string `env:"SFINSPECT_SHEET"`

	// LoadTimeout bounds reading every input; 0 means no limit (default: 0)
	LoadTimeout time.Duration `env:"SFINSPECT_LOAD_TIMEOUT" default:"0s"`
}

// SQLConfig holds settings of the SQL mirror.
type SQLConfig struct {
	// Enabled copies the loaded data into in-memory SQLite and enables the
	// shell's sql command (default: false)
	Enabled bool `env:"SFINSPECT_SQL" default:"false"`
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("SFINSPECT_LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("SFINSPECT_LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if strings.TrimSpace(c.Input.Sheet) != c.Input.Sheet {
		errs = append(errs, fmt.Sprintf("SFINSPECT_SHEET (%q) must not have leading or trailing spaces", c.Input.Sheet))
	}

	if c.Input.LoadTimeout < 0 {
		errs = append(errs, fmt.Sprintf("SFINSPECT_LOAD_TIMEOUT (%s) must not be negative", c.Input.LoadTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns a one-line representation of the config for logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}, ", c.Logging.Level, c.Logging.Format)
	fmt.Fprintf(&b, "Input: {Sheet: %q, LoadTimeout: %s}, ", c.Input.Sheet, c.Input.LoadTimeout)
	fmt.Fprintf(&b, "SQL: {Enabled: %v}", c.SQL.Enabled)
	b.WriteString("}")
	return b.String()
}
