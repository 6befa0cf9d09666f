// Package config holds the application configuration: YAML files merged
// with environment overrides, validated into a typed struct, with optional
// hot-reload of the watched files.
package config

import (
	"fmt"

	"github.com/Aidin1998/riskcore/internal/risk"
)

// ConfigVersion is stamped into configs that do not carry a version.
const ConfigVersion = "1.0.0"

// Config is the root application configuration.
type Config struct {
	Version     string        `json:"version" yaml:"version" mapstructure:"version"`
	Environment string        `json:"environment" yaml:"environment" mapstructure:"environment"`
	Logging     LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
	Analysis    risk.Config   `json:"analysis" yaml:"analysis" mapstructure:"analysis"`
}

// LoggingConfig controls the zap logger construction.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// DefaultConfig returns the configuration used when no file or environment
// override is present.
func DefaultConfig() *Config {
	return &Config{
		Version:     ConfigVersion,
		Environment: "development",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Analysis: risk.DefaultConfig(),
	}
}

// setDefaults backfills zero values after unmarshalling, so partial config
// files only need to name what they change.
func setDefaults(c *Config) {
	if c.Version == "" {
		c.Version = ConfigVersion
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Analysis.RiskFreeRateAnnual == 0 {
		c.Analysis.RiskFreeRateAnnual = risk.DefaultRiskFreeRateAnnual
	}
	if c.Analysis.MarketProxySymbol == "" {
		c.Analysis.MarketProxySymbol = risk.DefaultMarketProxySymbol
	}
	if c.Analysis.LookbackDays == 0 {
		c.Analysis.LookbackDays = risk.DefaultLookbackDays
	}
	if len(c.Analysis.FactorSymbols) == 0 {
		c.Analysis.FactorSymbols = risk.DefaultFactorSymbols()
	}
	if c.Analysis.RollingCorrWindow == 0 {
		c.Analysis.RollingCorrWindow = risk.DefaultRollingCorrWindow
	}
	if c.Analysis.RollingVolWindow == 0 {
		c.Analysis.RollingVolWindow = risk.DefaultRollingVolWindow
	}
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	switch c.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("config: unknown environment %q", c.Environment)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown logging level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: unknown logging format %q", c.Logging.Format)
	}
	if err := c.Analysis.Validate(); err != nil {
		return err
	}
	return nil
}
