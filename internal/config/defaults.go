package config

import "runtime"

// Default configuration values.
const (
	DefaultDataDir  = "."
	DefaultLocale   = "en-US"
	DefaultLogLevel = "warn"
	DefaultOutput   = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// DefaultConcurrency bounds concurrent style loads in batch commands.
func DefaultConcurrency() int {
	return min(runtime.NumCPU(), 8)
}

// defaults returns the koanf default layer.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"data_dir":    DefaultDataDir,
		"schema_path": "",
		"locales_dir": "",
		"styles_dir":  "",
		"locale":      DefaultLocale,
		"log_level":   DefaultLogLevel,
		"output":      DefaultOutput,
		"concurrency": DefaultConcurrency(),
		"verbose":     false,
	}
}

// ApplyDefaults fills unset fields of a Config.
func ApplyDefaults(c *Config) {
	if c == nil {
		return
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.OutputFormat == "" {
		c.OutputFormat = DefaultOutput
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency()
	}
}
