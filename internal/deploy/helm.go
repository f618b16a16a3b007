// Package deploy drives the cluster side of a test run: a helm release with
// a bounded number of browser-worker replicas, readiness and completion
// polling through the Kubernetes API, and retrieval of the runner's output.
package deploy

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/qaops/insider-e2e/internal/config"
)

// CommandRunner executes an external command and returns its combined
// output. Injected so the helm flow is testable without a cluster.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Helm wraps the helm binary. The chart itself defines the grid: browser
// worker deployment, the test-controller job, and their services.
type Helm struct {
	runner CommandRunner
	logger *zap.Logger
}

// NewHelm builds a Helm wrapper shelling out to the real binary.
func NewHelm(logger *zap.Logger) *Helm {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Helm{runner: execRunner, logger: logger}
}

// releaseExists probes for an existing release so the deploy can choose
// install vs upgrade.
func (h *Helm) releaseExists(ctx context.Context, release, namespace string) (bool, error) {
	out, err := h.runner(ctx, "helm", "list", "--namespace", namespace, "--filter", "^"+release+"$", "--short")
	if err != nil {
		return false, fmt.Errorf("helm list: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// InstallOrUpgrade converges the release onto the chart with the requested
// browser-worker replica count. helm's own --wait covers resource creation;
// pod readiness is verified separately against the API server.
func (h *Helm) InstallOrUpgrade(ctx context.Context, cfg config.DeployConfig) error {
	exists, err := h.releaseExists(ctx, cfg.ReleaseName, cfg.Namespace)
	if err != nil {
		return err
	}
	verb := "install"
	if exists {
		verb = "upgrade"
	}

	args := []string{
		verb, cfg.ReleaseName, cfg.ChartPath,
		"--set", fmt.Sprintf("chromeNode.nodeCount=%d", cfg.NodeCount),
		"--namespace", cfg.Namespace,
		"--create-namespace",
	}
	if cfg.ValuesFile != "" {
		args = append(args, "-f", cfg.ValuesFile)
	}
	args = append(args, "--wait", "--timeout", cfg.WaitTimeout.String())

	h.logger.Info("Converging helm release",
		zap.String("action", verb),
		zap.String("release", cfg.ReleaseName),
		zap.String("chart", cfg.ChartPath),
		zap.Int("node_count", cfg.NodeCount))

	out, err := h.runner(ctx, "helm", args...)
	if err != nil {
		return fmt.Errorf("helm %s %s: %w: %s", verb, cfg.ReleaseName, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Uninstall removes the release.
func (h *Helm) Uninstall(ctx context.Context, release, namespace string) error {
	h.logger.Info("Removing helm release", zap.String("release", release), zap.String("namespace", namespace))
	out, err := h.runner(ctx, "helm", "uninstall", release, "--namespace", namespace)
	if err != nil {
		return fmt.Errorf("helm uninstall %s: %w: %s", release, err, strings.TrimSpace(string(out)))
	}
	return nil
}
