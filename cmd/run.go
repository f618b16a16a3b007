// -- cmd/run.go --
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/qaops/insider-e2e/internal/browser"
	"github.com/qaops/insider-e2e/internal/observability"
	"github.com/qaops/insider-e2e/internal/report"
	"github.com/qaops/insider-e2e/internal/scenarios"
)

var (
	runTags   []string
	runFormat string
	runOutput string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the browser test scenarios against the target site.",
	Long: `Run executes the scenario registry over fresh browser sessions, one
session per scenario. With --tags only scenarios carrying any of the given
tags run; without it the whole registry runs in order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.GetLogger()
		cfg := appConfig

		selected := scenarios.Select(scenarios.Registry(), runTags)
		if len(selected) == 0 {
			return fmt.Errorf("no scenarios match tags %v", runTags)
		}

		factory := func() (browser.Session, error) {
			return browser.NewSession(cfg.Browser, logger)
		}
		runner := scenarios.NewRunner(logger, cfg.Site, factory)

		reporter, err := report.New(runFormat, runOutput)
		if err != nil {
			return err
		}
		defer reporter.Close()

		results := runner.Run(cmd.Context(), selected)
		for _, res := range results {
			if res.Err != nil {
				logger.Error("FAIL",
					zap.String("scenario", res.Scenario),
					zap.Duration("duration", res.Duration),
					zap.Error(res.Err))
			} else {
				logger.Info("PASS",
					zap.String("scenario", res.Scenario),
					zap.Duration("duration", res.Duration))
			}
		}

		if err := reporter.Write(results); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}

		if failed := scenarios.Failed(results); failed > 0 {
			return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
		}
		logger.Info("All scenarios passed", zap.Int("count", len(results)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVar(&runTags, "tags", nil, "only run scenarios carrying any of these tags (smoke, regression, careers)")
	runCmd.Flags().StringVar(&runFormat, "format", "text", "report format (text, json)")
	runCmd.Flags().StringVar(&runOutput, "output", "stdout", "report destination (stdout or a file path)")
	runCmd.Flags().String("base-url", "", "target site base URL")
	runCmd.Flags().String("remote-url", "", "remote WebDriver endpoint; empty starts a local chromedriver")

	viper.BindPFlag("site.base_url", runCmd.Flags().Lookup("base-url"))
	viper.BindPFlag("browser.remote_url", runCmd.Flags().Lookup("remote-url"))
}
