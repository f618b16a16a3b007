package deploy

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

const (
	// chromeNodeNameFragment identifies browser-worker pods by name; the
	// chart names them after the deployment.
	chromeNodeNameFragment = "chrome-node"
	// testControllerSelector labels the job pod running the suite.
	testControllerSelector = "app.kubernetes.io/component=test-controller"
	// testRunnerContainer is the container whose logs carry the results.
	testRunnerContainer = "test-runner"
)

// Cluster watches the deployed resources through the Kubernetes API.
type Cluster struct {
	client kubernetes.Interface
	logger *zap.Logger

	// PollInterval paces every watch loop against the API server.
	PollInterval time.Duration
}

// NewCluster builds a watcher over an established client.
func NewCluster(client kubernetes.Interface, logger *zap.Logger) *Cluster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cluster{client: client, logger: logger, PollInterval: 2 * time.Second}
}

func (c *Cluster) limiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(c.PollInterval), 1)
}

// WaitChromeNodesReady polls until every live browser-worker pod is Running
// with a true Ready condition. Pods already Succeeded or Failed are ignored;
// they are leftovers from earlier runs.
func (c *Cluster) WaitChromeNodesReady(ctx context.Context, namespace string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	limiter := c.limiter()

	for {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		pods, err := c.client.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
		if err != nil {
			return fmt.Errorf("listing pods in %s: %w", namespace, err)
		}

		total, ready := 0, 0
		for i := range pods.Items {
			pod := &pods.Items[i]
			if pod.Status.Phase == corev1.PodSucceeded || pod.Status.Phase == corev1.PodFailed {
				continue
			}
			if !strings.Contains(pod.Name, chromeNodeNameFragment) {
				continue
			}
			total++
			if pod.Status.Phase == corev1.PodRunning && podReady(pod) {
				ready++
			}
		}

		c.logger.Info("Browser worker readiness", zap.Int("ready", ready), zap.Int("total", total))
		if total > 0 && ready == total {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for browser workers: %d/%d ready after %s", ready, total, timeout)
		}
	}
}

// WaitTestControllerScheduled polls until the test-controller pod exists,
// whatever its phase.
func (c *Cluster) WaitTestControllerScheduled(ctx context.Context, namespace string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	limiter := c.limiter()

	for {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		pods, err := c.client.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: testControllerSelector})
		if err != nil {
			return fmt.Errorf("listing test controller pods: %w", err)
		}
		if len(pods.Items) > 0 {
			c.logger.Info("Test controller scheduled", zap.String("pod", pods.Items[0].Name))
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for test controller pod after %s", timeout)
		}
	}
}

// WaitTestCompletion polls the test-controller pod until it terminates and
// returns its name and whether the run succeeded.
func (c *Cluster) WaitTestCompletion(ctx context.Context, namespace string, timeout time.Duration) (string, bool, error) {
	deadline := time.Now().Add(timeout)
	limiter := c.limiter()

	for {
		if err := limiter.Wait(ctx); err != nil {
			return "", false, err
		}

		pods, err := c.client.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: testControllerSelector})
		if err != nil {
			return "", false, fmt.Errorf("listing test controller pods: %w", err)
		}

		if len(pods.Items) > 0 {
			pod := &pods.Items[0]
			c.logger.Debug("Test controller status", zap.String("pod", pod.Name), zap.String("phase", string(pod.Status.Phase)))
			switch pod.Status.Phase {
			case corev1.PodSucceeded:
				return pod.Name, true, nil
			case corev1.PodFailed:
				return pod.Name, false, nil
			}
		}

		if time.Now().After(deadline) {
			return "", false, fmt.Errorf("timed out waiting for test completion after %s", timeout)
		}
	}
}

// TestRunnerLogs retrieves the suite output from the completed pod.
func (c *Cluster) TestRunnerLogs(ctx context.Context, namespace, podName string) (string, error) {
	req := c.client.CoreV1().Pods(namespace).GetLogs(podName, &corev1.PodLogOptions{Container: testRunnerContainer})
	stream, err := req.Stream(ctx)
	if err != nil {
		return "", fmt.Errorf("streaming logs from %s/%s: %w", podName, testRunnerContainer, err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return "", fmt.Errorf("reading logs from %s: %w", podName, err)
	}
	return string(data), nil
}

// LogSummary reports the namespace's deployments, jobs, and services after
// readiness, mirroring what an operator would check by hand.
func (c *Cluster) LogSummary(ctx context.Context, namespace string) {
	deployments, err := c.client.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		c.logger.Warn("Could not list deployments", zap.Error(err))
	} else {
		for i := range deployments.Items {
			dep := &deployments.Items[i]
			c.logger.Info("Deployment",
				zap.String("name", dep.Name),
				zap.Int32("ready", dep.Status.ReadyReplicas),
				zap.Int32("replicas", dep.Status.Replicas))
		}
	}

	jobs, err := c.client.BatchV1().Jobs(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		c.logger.Warn("Could not list jobs", zap.Error(err))
	} else {
		for i := range jobs.Items {
			job := &jobs.Items[i]
			c.logger.Info("Job",
				zap.String("name", job.Name),
				zap.Int32("active", job.Status.Active),
				zap.Int32("succeeded", job.Status.Succeeded),
				zap.Int32("failed", job.Status.Failed))
		}
	}

	services, err := c.client.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		c.logger.Warn("Could not list services", zap.Error(err))
	} else {
		for i := range services.Items {
			svc := &services.Items[i]
			if svc.Name == "kubernetes" {
				continue
			}
			ports := make([]string, 0, len(svc.Spec.Ports))
			for _, p := range svc.Spec.Ports {
				ports = append(ports, fmt.Sprintf("%d/%s", p.Port, p.Protocol))
			}
			c.logger.Info("Service",
				zap.String("name", svc.Name),
				zap.String("cluster_ip", svc.Spec.ClusterIP),
				zap.Strings("ports", ports))
		}
	}
}

func podReady(pod *corev1.Pod) bool {
	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady && cond.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}
