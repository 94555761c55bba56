package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openwpan/hiltest/pkg/config"
	"github.com/openwpan/hiltest/pkg/harness"
	"github.com/openwpan/hiltest/pkg/logging"
	"github.com/openwpan/hiltest/pkg/result"
)

var runCmd = &cobra.Command{
	Use:   "run [suite ...]",
	Short: "Run registered test suites",
	Long: `Runs the named suites, or every registered suite when none are named.
Each suite gets a timestamped artifact directory with its log, capture files
and results.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		suites, err := resolveSuites(args)
		if err != nil {
			return err
		}

		report, err := runSuites(cfg, suites)
		if err != nil {
			return err
		}
		if report.Failed() {
			return fmt.Errorf("run finished with failures")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func resolveSuites(names []string) ([]harness.Suite, error) {
	if len(names) == 0 {
		suites := harness.Suites()
		if len(suites) == 0 {
			return nil, fmt.Errorf("no suites registered")
		}
		return suites, nil
	}

	suites := make([]harness.Suite, 0, len(names))
	for _, name := range names {
		s, ok := harness.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown suite %q", name)
		}
		suites = append(suites, s)
	}
	return suites, nil
}

func runSuites(cfg *config.Config, suites []harness.Suite) (*harness.RunReport, error) {
	tracking, err := config.LoadTrackingMap(cfg.TrackingFile)
	if err != nil {
		return nil, err
	}

	opts := []harness.Option{harness.WithTracking(tracking)}

	if cfg.ResultsDSN != "" {
		sink, err := result.NewClickHouseSink(logging.ChildLogger(Logger, "results"), cfg.ResultsDSN)
		if err != nil {
			// The bench run matters more than the dashboard export.
			Logger.WithError(err).Warn("results sink unavailable, continuing without export")
		} else {
			opts = append(opts, harness.WithSink(sink))
		}
	}

	session := harness.NewSession(cfg, opts...)

	ctx := contextForRun()
	report, err := session.Run(ctx, suites...)
	if err != nil {
		return nil, err
	}

	if err := session.Finish(ctx); err != nil {
		Logger.WithError(err).Warn("finishing session")
	}

	return report, nil
}
