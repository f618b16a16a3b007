package deploy

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/qaops/insider-e2e/internal/config"
)

// Deployer runs the full deploy-and-execute flow: converge the release,
// wait for the grid, surface the results, optionally tear down.
type Deployer struct {
	helm    *Helm
	cluster *Cluster
	logger  *zap.Logger

	// Report receives the suite's log output. Defaults to the logger; the
	// CLI points it at stdout so results read like a local run.
	Report func(logs string)
}

// NewDeployer wires a deployer from its two halves.
func NewDeployer(helm *Helm, cluster *Cluster, logger *zap.Logger) *Deployer {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Deployer{helm: helm, cluster: cluster, logger: logger}
	d.Report = func(logs string) {
		d.logger.Info("Test runner output", zap.String("logs", logs))
	}
	return d
}

// Run executes the whole flow. Cleanup, when requested, happens even after a
// failed test run; only the converge/wait stages skip it. A failed suite is
// an error: the exit code must reflect the verdict.
func (d *Deployer) Run(ctx context.Context, cfg config.DeployConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := d.helm.InstallOrUpgrade(ctx, cfg); err != nil {
		return err
	}

	// The worker deployment and the controller job start together; await
	// both concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.cluster.WaitChromeNodesReady(gctx, cfg.Namespace, cfg.WaitTimeout)
	})
	g.Go(func() error {
		return d.cluster.WaitTestControllerScheduled(gctx, cfg.Namespace, cfg.WaitTimeout)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	d.cluster.LogSummary(ctx, cfg.Namespace)

	podName, succeeded, err := d.cluster.WaitTestCompletion(ctx, cfg.Namespace, cfg.WaitTimeout)
	if err != nil {
		return err
	}

	logs, err := d.cluster.TestRunnerLogs(ctx, cfg.Namespace, podName)
	if err != nil {
		d.logger.Warn("Could not retrieve test runner logs", zap.Error(err))
	} else {
		d.Report(logs)
	}

	if cfg.Cleanup {
		if err := d.helm.Uninstall(ctx, cfg.ReleaseName, cfg.Namespace); err != nil {
			return err
		}
	}

	if !succeeded {
		return fmt.Errorf("test run failed (pod %s)", podName)
	}
	d.logger.Info("Deployment and test execution completed", zap.String("pod", podName))
	return nil
}
