// Package config loads stepstats run settings from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasjlepore/stepcadence"
	"gopkg.in/yaml.v3"
)

// Config holds all stepstats settings.
type Config struct {
	// Region is the countyCode to keep. Empty keeps every user.
	Region string `yaml:"region"`

	Thresholds stepcadence.Thresholds `yaml:"thresholds"`

	// InvalidCells is strict or missing. It has no default.
	InvalidCells string `yaml:"invalid_cells"`

	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig configures where and how summaries are written.
type OutputConfig struct {
	Dir       string `yaml:"dir"`
	Format    string `yaml:"format"` // csv, parquet, sqlite
	Overwrite bool   `yaml:"overwrite"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// ValidFormats lists the summary formats a run can write.
var ValidFormats = []string{"csv", "parquet", "sqlite"}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Region:     "GBR",
		Thresholds: stepcadence.DefaultThresholds(),
		Output: OutputConfig{
			Format: "csv",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults and applies environment
// overrides. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if region, ok := os.LookupEnv("STEPSTATS_REGION"); ok {
		c.Region = strings.TrimSpace(region)
	}
	if policy := os.Getenv("STEPSTATS_INVALID_CELLS"); policy != "" {
		c.InvalidCells = policy
	}
	if format := os.Getenv("STEPSTATS_FORMAT"); format != "" {
		c.Output.Format = format
	}
}

// CellPolicy parses InvalidCells.
func (c *Config) CellPolicy() (stepcadence.CellPolicy, error) {
	return stepcadence.ParseCellPolicy(c.InvalidCells)
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if c.Thresholds.MinAllSteps < 0 || c.Thresholds.MinWalkingSteps < 0 || c.Thresholds.MinActiveSteps < 0 {
		return fmt.Errorf("thresholds must be non-negative: %+v", c.Thresholds)
	}
	if _, err := c.CellPolicy(); err != nil {
		return fmt.Errorf("invalid_cells: %w (set strict or missing)", err)
	}

	format := strings.ToLower(strings.TrimSpace(c.Output.Format))
	valid := false
	for _, f := range ValidFormats {
		if format == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid output format: %s (valid: %v)", c.Output.Format, ValidFormats)
	}
	return nil
}
