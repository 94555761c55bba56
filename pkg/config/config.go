// Package config handles harness run configuration loading and management
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable keys recognized by Load.
const (
	EnvOutputDir    = "HILTEST_OUTPUT_DIRECTORY"
	EnvVizHost      = "HILTEST_VIZ_HOST"
	EnvVerbosity    = "HILTEST_VERBOSITY"
	EnvSettleDelay  = "HILTEST_SETTLE_DELAY"
	EnvTrackingFile = "HILTEST_TRACKING_FILE"
	EnvResultsDSN   = "HILTEST_RESULTS_DSN"
)

// DefaultOutputDir is used when no output directory override is configured.
const DefaultOutputDir = "/tmp/hiltest-results"

// DefaultSettleDelay is the pause inserted between dispatch and collection in
// multi-source pings. Some board families drop the first responses when hit
// immediately after dispatch.
const DefaultSettleDelay = 2 * time.Second

// Config holds the per-run harness configuration.
//
// Verbosity controls the console sink only, the log file always captures
// full debug output:
//
//	0 = critical errors only
//	1 = informational
//	2 = debug
type Config struct {
	OutputDir    string
	VizHost      string
	Verbosity    int
	SettleDelay  time.Duration
	TrackingFile string
	ResultsDSN   string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// It's okay if the file doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		OutputDir:    getEnv(EnvOutputDir, DefaultOutputDir),
		VizHost:      getEnv(EnvVizHost, ""),
		SettleDelay:  DefaultSettleDelay,
		TrackingFile: getEnv(EnvTrackingFile, ""),
		ResultsDSN:   getEnv(EnvResultsDSN, ""),
	}

	verbosity, err := strconv.Atoi(getEnv(EnvVerbosity, "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvVerbosity, err)
	}
	if verbosity < 0 || verbosity > 2 {
		return nil, fmt.Errorf("invalid %s: must be 0, 1 or 2, got %d", EnvVerbosity, verbosity)
	}
	cfg.Verbosity = verbosity

	if raw := os.Getenv(EnvSettleDelay); raw != "" {
		delay, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvSettleDelay, err)
		}
		cfg.SettleDelay = delay
	}

	return cfg, nil
}

// SetOutputDir overrides the base directory for run artifacts.
func (c *Config) SetOutputDir(path string) {
	if path != "" {
		c.OutputDir = path
	}
}

// SetVizHost overrides the visualization service host. An empty host leaves
// visualization disabled.
func (c *Config) SetVizHost(host string) {
	if host != "" {
		c.VizHost = host
	}
}

// SetVerbosity overrides the console verbosity. Out-of-range values are
// clamped.
func (c *Config) SetVerbosity(verbosity int) {
	if verbosity < 0 {
		verbosity = 0
	}
	if verbosity > 2 {
		verbosity = 2
	}
	c.Verbosity = verbosity
}

// SetSettleDelay overrides the multi-source ping settling delay.
func (c *Config) SetSettleDelay(delay time.Duration) {
	if delay >= 0 {
		c.SettleDelay = delay
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) String() string {
	vizDisplay := c.VizHost
	if vizDisplay == "" {
		vizDisplay = "(disabled)"
	}

	trackingDisplay := c.TrackingFile
	if trackingDisplay == "" {
		trackingDisplay = "(not set)"
	}

	resultsDisplay := "(not set)"
	if c.ResultsDSN != "" {
		resultsDisplay = "********"
	}

	return fmt.Sprintf(`Current Configuration:
  Output Directory:   %s
  Visualization Host: %s
  Console Verbosity:  %d
  Settle Delay:       %s
  Tracking File:      %s
  Results DSN:        %s`,
		c.OutputDir,
		vizDisplay,
		c.Verbosity,
		c.SettleDelay,
		trackingDisplay,
		resultsDisplay,
	)
}
