package config

import (
	"log/slog"
	"strings"
)

// Config holds tlfsplit configuration.
// Stored at: ./config.yaml or ~/.tlfsplit/config.yaml
type Config struct {
	Log     LogCfg     `mapstructure:"log" yaml:"log"`
	Extract ExtractCfg `mapstructure:"extract" yaml:"extract"`
}

// LogCfg configures logging output.
type LogCfg struct {
	Level string `mapstructure:"level" yaml:"level"` // "debug", "info", "warn", "error"
}

// ExtractCfg configures extraction behavior.
type ExtractCfg struct {
	// NoText skips plain-text output by default; the --no-text flag
	// overrides this per run.
	NoText bool `mapstructure:"no_text" yaml:"no_text"`
	// FallbackPdftotext shells out to pdftotext when library text
	// extraction fails for a page.
	FallbackPdftotext bool `mapstructure:"fallback_pdftotext" yaml:"fallback_pdftotext"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogCfg{
			Level: "warn",
		},
		Extract: ExtractCfg{
			NoText:            false,
			FallbackPdftotext: false,
		},
	}
}

// SlogLevel maps the configured level string onto a slog level.
// Unknown values fall back to warn.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
