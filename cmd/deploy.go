// -- cmd/deploy.go --
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/qaops/insider-e2e/internal/deploy"
	"github.com/qaops/insider-e2e/internal/observability"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the suite to a Kubernetes cluster and run it there.",
	Long: `Deploy converges the helm release (browser workers plus the
test-controller job), waits for the grid to come up, streams the suite's
verdict and logs back, and optionally removes the release afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.GetLogger()
		cfg := appConfig

		client, err := newKubeClient()
		if err != nil {
			return err
		}

		deployer := deploy.NewDeployer(deploy.NewHelm(logger), deploy.NewCluster(client, logger), logger)
		deployer.Report = func(logs string) {
			fmt.Fprintln(cmd.OutOrStdout(), logs)
		}
		return deployer.Run(cmd.Context(), cfg.Deploy)
	},
}

// newKubeClient builds a clientset from the ambient kubeconfig (KUBECONFIG,
// ~/.kube/config, or in-cluster via the default loading rules).
func newKubeClient() (kubernetes.Interface, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, &clientcmd.ConfigOverrides{})
	restConfig, err := clientConfig.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("loading kubeconfig: %w", err)
	}
	return kubernetes.NewForConfig(restConfig)
}

func init() {
	rootCmd.AddCommand(deployCmd)

	deployCmd.Flags().Int("node-count", 2, "number of browser worker replicas (1-5)")
	deployCmd.Flags().String("namespace", "default", "Kubernetes namespace")
	deployCmd.Flags().Duration("wait-timeout", 0, "timeout for pod readiness and test completion")
	deployCmd.Flags().String("chart-path", "", "path to the helm chart")
	deployCmd.Flags().String("values-file", "", "custom helm values file")
	deployCmd.Flags().Bool("cleanup", false, "remove the helm release after the run")

	viper.BindPFlag("deploy.node_count", deployCmd.Flags().Lookup("node-count"))
	viper.BindPFlag("deploy.namespace", deployCmd.Flags().Lookup("namespace"))
	viper.BindPFlag("deploy.wait_timeout", deployCmd.Flags().Lookup("wait-timeout"))
	viper.BindPFlag("deploy.chart_path", deployCmd.Flags().Lookup("chart-path"))
	viper.BindPFlag("deploy.values_file", deployCmd.Flags().Lookup("values-file"))
	viper.BindPFlag("deploy.cleanup", deployCmd.Flags().Lookup("cleanup"))
}
