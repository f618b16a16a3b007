package deploy

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaops/insider-e2e/internal/config"
)

type recordedCommand struct {
	name string
	args []string
}

// stubRunner replays canned outputs and records every invocation.
type stubRunner struct {
	commands []recordedCommand
	outputs  []struct {
		out []byte
		err error
	}
}

func (r *stubRunner) next(out string, err error) {
	r.outputs = append(r.outputs, struct {
		out []byte
		err error
	}{[]byte(out), err})
}

func (r *stubRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.commands = append(r.commands, recordedCommand{name: name, args: args})
	if len(r.outputs) == 0 {
		return nil, nil
	}
	head := r.outputs[0]
	r.outputs = r.outputs[1:]
	return head.out, head.err
}

func deployConfig() config.DeployConfig {
	return config.DeployConfig{
		NodeCount:   3,
		Namespace:   "e2e",
		WaitTimeout: 5 * time.Minute,
		ChartPath:   "./helm/insider-tests",
		ReleaseName: "insider-tests",
	}
}

func TestInstallWhenReleaseAbsent(t *testing.T) {
	runner := &stubRunner{}
	runner.next("", nil)   // helm list: no release
	runner.next("ok", nil) // helm install

	h := NewHelm(nil)
	h.runner = runner.run

	require.NoError(t, h.InstallOrUpgrade(context.Background(), deployConfig()))
	require.Len(t, runner.commands, 2)

	install := runner.commands[1]
	assert.Equal(t, "helm", install.name)
	assert.Equal(t, "install", install.args[0])
	assert.Equal(t, "insider-tests", install.args[1])
	assert.Equal(t, "./helm/insider-tests", install.args[2])

	joined := strings.Join(install.args, " ")
	assert.Contains(t, joined, "--set chromeNode.nodeCount=3")
	assert.Contains(t, joined, "--namespace e2e")
	assert.Contains(t, joined, "--create-namespace")
	assert.Contains(t, joined, "--wait --timeout 5m0s")
	assert.NotContains(t, joined, "-f ", "no values file flag unless configured")
}

func TestUpgradeWhenReleaseExists(t *testing.T) {
	runner := &stubRunner{}
	runner.next("insider-tests\n", nil) // helm list: release present
	runner.next("ok", nil)              // helm upgrade

	h := NewHelm(nil)
	h.runner = runner.run

	require.NoError(t, h.InstallOrUpgrade(context.Background(), deployConfig()))
	assert.Equal(t, "upgrade", runner.commands[1].args[0])
}

func TestInstallPassesValuesFile(t *testing.T) {
	runner := &stubRunner{}
	runner.next("", nil)
	runner.next("ok", nil)

	h := NewHelm(nil)
	h.runner = runner.run

	cfg := deployConfig()
	cfg.ValuesFile = "values-aws.yaml"
	require.NoError(t, h.InstallOrUpgrade(context.Background(), cfg))

	joined := strings.Join(runner.commands[1].args, " ")
	assert.Contains(t, joined, "-f values-aws.yaml")
}

func TestInstallFailureCarriesHelmOutput(t *testing.T) {
	runner := &stubRunner{}
	runner.next("", nil)
	runner.next("Error: chart not found", errors.New("exit status 1"))

	h := NewHelm(nil)
	h.runner = runner.run

	err := h.InstallOrUpgrade(context.Background(), deployConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chart not found")
}

func TestUninstall(t *testing.T) {
	runner := &stubRunner{}
	runner.next("release \"insider-tests\" uninstalled", nil)

	h := NewHelm(nil)
	h.runner = runner.run

	require.NoError(t, h.Uninstall(context.Background(), "insider-tests", "e2e"))
	require.Len(t, runner.commands, 1)
	assert.Equal(t, []string{"uninstall", "insider-tests", "--namespace", "e2e"}, runner.commands[0].args)
}
