// Package cmd contains CLI command definitions
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/openwpan/hiltest/pkg/config"
)

var (
	// Logger is the shared logger instance for all commands
	Logger *logrus.Logger

	flagOutputDir string
	flagVizHost   string
	flagVerbosity int

	rootCmd = &cobra.Command{
		Use:   "hiltest",
		Short: "hiltest - hardware-in-the-loop mesh test harness",
		Long: `hiltest runs hardware-in-the-loop test suites against wireless mesh
device benches: lifecycle orchestration, capture sniffers, result artifacts
and ping-based network assertions.

Run without arguments to launch interactive mode, or use subcommands for
direct operations.`,
		Run: func(_ *cobra.Command, _ []string) {
			runInteractive()
		},
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Initialize the shared logger
	Logger = logrus.New()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		fmt.Printf("Invalid LOG_LEVEL '%s', defaulting to 'info'\n", logLevel)
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	rootCmd.PersistentFlags().StringVar(&flagOutputDir, "output-dir", "",
		"base directory for run artifacts (overrides "+config.EnvOutputDir+")")
	rootCmd.PersistentFlags().StringVar(&flagVizHost, "viz-host", "",
		"network visualization host (overrides "+config.EnvVizHost+")")
	rootCmd.PersistentFlags().IntVar(&flagVerbosity, "verbosity", -1,
		"console verbosity 0-2 (overrides "+config.EnvVerbosity+")")
}

// loadConfig resolves the run configuration: environment first, then any
// explicit flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	cfg.SetOutputDir(flagOutputDir)
	cfg.SetVizHost(flagVizHost)
	if flagVerbosity >= 0 {
		cfg.SetVerbosity(flagVerbosity)
	}

	return cfg, nil
}
