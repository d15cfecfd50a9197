// Package config provides configuration management for cslkit.
//
// Configuration is layered with koanf: built-in defaults, then a
// cslkit.yaml (or cslkit.yml) file, then CSLKIT_* environment variables,
// then explicitly set command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/cslkit/pkg/csl/resource"
	"golang.org/x/text/language"
)

// Config holds all cslkit configuration options.
type Config struct {
	// DataDir is the root the resource directories derive from when they
	// are not set explicitly.
	DataDir      string `koanf:"data_dir"`
	SchemaPath   string `koanf:"schema_path"`
	LocalesDir   string `koanf:"locales_dir"`
	StylesDir    string `koanf:"styles_dir"`
	Locale       string `koanf:"locale"`
	LogLevel     string `koanf:"log_level"`
	OutputFormat string `koanf:"output"`
	Concurrency  int    `koanf:"concurrency"`
	Verbose      bool   `koanf:"verbose"`

	// ProjectRoot is the directory relative paths were resolved against.
	ProjectRoot string `koanf:"-"`
	// ConfigFile is the config file that was read, if any.
	ConfigFile string `koanf:"-"`
}

// Resources returns the resource layout for the loader. Explicit
// directories win over the ones derived from DataDir.
func (c *Config) Resources() resource.Config {
	rc := resource.ConfigFromRoot(c.DataDir)
	if c.SchemaPath != "" {
		rc.SchemaPath = c.SchemaPath
	}
	if c.LocalesDir != "" {
		rc.LocalesDir = c.LocalesDir
	}
	if c.StylesDir != "" {
		rc.StylesDir = c.StylesDir
	}
	return rc
}

// Locales returns the configured locale list. The locale key accepts a
// comma separated list, most preferred first.
func (c *Config) Locales() []string {
	var codes []string
	for _, code := range strings.Split(c.Locale, ",") {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" && (c.LocalesDir == "" || c.StylesDir == "") {
		return errors.New("data_dir is required unless locales_dir and styles_dir are set")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if !IsValidOutput(c.OutputFormat) {
		return fmt.Errorf("invalid output %q (want one of %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	for _, code := range c.Locales() {
		if _, err := language.Parse(code); err != nil {
			return fmt.Errorf("invalid locale %q: %w", code, err)
		}
	}
	return nil
}

// OutputFormats lists the accepted values of the output key.
var OutputFormats = []string{"auto", "text", "markdown", "json", "yaml"}

// IsValidOutput reports whether format is one of OutputFormats.
func IsValidOutput(format string) bool {
	for _, f := range OutputFormats {
		if f == format {
			return true
		}
	}
	return false
}
