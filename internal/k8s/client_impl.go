package k8s

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// kubernetesClient implements the Client interface using client-go.
type kubernetesClient struct {
	// Configuration
	config *ClientConfig

	clientset      kubernetes.Interface
	restConfig     *rest.Config
	currentContext string
	inCluster      bool

	// Safety settings
	nonDestructiveMode   bool
	dryRun               bool
	allowedOperations    []string
	restrictedNamespaces []string
}

// ClientConfig holds configuration for the Kubernetes client.
type ClientConfig struct {
	// Kubeconfig settings
	KubeconfigPath string
	Context        string

	// Authentication mode. When false, in-cluster authentication is still
	// attempted if the process runs inside a pod, with kubeconfig as the
	// fallback.
	InCluster bool

	// Safety settings. AllowedOperations are exempt from
	// non-destructive mode.
	NonDestructiveMode   bool
	DryRun               bool
	AllowedOperations    []string
	RestrictedNamespaces []string

	// Performance settings
	QPSLimit   float32
	BurstLimit int
	Timeout    time.Duration

	// Debug settings
	DebugMode bool

	// Logging
	Logger Logger
}

// Logger interface for client logging. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NewClient resolves cluster credentials and builds a client.
func NewClient(config *ClientConfig) (*kubernetesClient, error) {
	if config == nil {
		return nil, fmt.Errorf("client configuration is required")
	}
	applyDefaults(config)

	client := newClient(config)

	restConfig, err := client.resolveRestConfig()
	if err != nil {
		return nil, err
	}

	// Apply performance settings
	restConfig.QPS = config.QPSLimit
	restConfig.Burst = config.BurstLimit
	restConfig.Timeout = config.Timeout

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	client.restConfig = restConfig
	client.clientset = clientset

	return client, nil
}

// NewClientFromClientset wraps an existing clientset. Credential
// resolution is skipped.
func NewClientFromClientset(clientset kubernetes.Interface, config *ClientConfig) *kubernetesClient {
	if config == nil {
		config = &ClientConfig{}
	}
	applyDefaults(config)

	client := newClient(config)
	client.clientset = clientset
	client.inCluster = config.InCluster
	if config.InCluster {
		client.currentContext = InClusterContext
	}
	return client
}

func applyDefaults(config *ClientConfig) {
	if config.QPSLimit == 0 {
		config.QPSLimit = DefaultQPSLimit
	}
	if config.BurstLimit == 0 {
		config.BurstLimit = DefaultBurstLimit
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout * time.Second
	}
}

func newClient(config *ClientConfig) *kubernetesClient {
	return &kubernetesClient{
		config:               config,
		nonDestructiveMode:   config.NonDestructiveMode,
		dryRun:               config.DryRun,
		allowedOperations:    config.AllowedOperations,
		restrictedNamespaces: config.RestrictedNamespaces,
	}
}

// InCluster reports whether service account authentication is in use.
func (c *kubernetesClient) InCluster() bool {
	return c.inCluster
}

// resolveRestConfig picks the credential source: forced in-cluster,
// opportunistic in-cluster when running in a pod, then kubeconfig.
func (c *kubernetesClient) resolveRestConfig() (*rest.Config, error) {
	if c.config.InCluster {
		if err := validateInClusterEnvironment(); err != nil {
			return nil, fmt.Errorf("in-cluster authentication not available: %w", err)
		}
		restConfig, err := rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create in-cluster rest config: %w", err)
		}
		c.useInCluster()
		return restConfig, nil
	}

	if os.Getenv(ServiceHostEnv) != "" {
		restConfig, err := rest.InClusterConfig()
		if err == nil {
			c.useInCluster()
			return restConfig, nil
		}
		c.debug("in-cluster config unavailable, falling back to kubeconfig", "error", err)
	}

	restConfig, err := c.loadKubeconfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	if c.config.Logger != nil {
		c.config.Logger.Info("Using kubeconfig authentication", "context", c.currentContext)
	}
	return restConfig, nil
}

func (c *kubernetesClient) useInCluster() {
	c.inCluster = true
	c.currentContext = InClusterContext
	if c.config.Logger != nil {
		c.config.Logger.Info("Using in-cluster authentication")
	}
}

// validateInClusterEnvironment checks if the required in-cluster authentication files are present.
func validateInClusterEnvironment() error {
	if _, err := os.Stat(DefaultTokenPath); os.IsNotExist(err) {
		return fmt.Errorf("service account token not found at %s", DefaultTokenPath)
	}
	if _, err := os.Stat(DefaultCACertPath); os.IsNotExist(err) {
		return fmt.Errorf("service account CA certificate not found at %s", DefaultCACertPath)
	}
	if _, err := os.Stat(DefaultNamespacePath); os.IsNotExist(err) {
		return fmt.Errorf("service account namespace not found at %s", DefaultNamespacePath)
	}
	return nil
}

// loadKubeconfig builds a rest config from the explicit path, $KUBECONFIG
// or the default home location.
func (c *kubernetesClient) loadKubeconfig() (*rest.Config, error) {
	{
		kconf := os.Getenv("KUBECONFIG")
		if strings.HasPrefix(kconf, "~/") {
			uhd, _ := os.UserHomeDir()
			kconf = filepath.Join(uhd, kconf[2:])
		}

		if kconf != "" && c.config.KubeconfigPath == "" {
			c.config.KubeconfigPath = kconf
		}
	}

	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if c.config.KubeconfigPath != "" {
		loadingRules.ExplicitPath = c.config.KubeconfigPath
	}

	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		loadingRules,
		&clientcmd.ConfigOverrides{CurrentContext: c.config.Context},
	)

	rawConfig, err := clientConfig.RawConfig()
	if err != nil {
		return nil, err
	}

	c.currentContext = c.config.Context
	if c.currentContext == "" {
		c.currentContext = rawConfig.CurrentContext
	}
	if _, exists := rawConfig.Contexts[c.currentContext]; !exists && c.currentContext != "" {
		return nil, fmt.Errorf("context %q does not exist in kubeconfig", c.currentContext)
	}

	restConfig, err := clientConfig.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create rest config for context %q: %w", c.currentContext, err)
	}
	c.debug("got REST config", "host", restConfig.Host)

	return restConfig, nil
}

// isOperationAllowed blocks destructive operations in non-destructive mode.
// Dry-run and AllowedOperations lift the block.
func (c *kubernetesClient) isOperationAllowed(operation string) error {
	if !c.nonDestructiveMode || c.dryRun {
		return nil
	}
	if !slices.Contains(destructiveOperations, operation) || slices.Contains(c.allowedOperations, operation) {
		return nil
	}
	return fmt.Errorf("destructive operation %q is not allowed in non-destructive mode", operation)
}

// isNamespaceRestricted checks if a namespace is restricted.
func (c *kubernetesClient) isNamespaceRestricted(namespace string) error {
	if slices.Contains(c.restrictedNamespaces, namespace) {
		return fmt.Errorf("access to namespace %q is restricted", namespace)
	}
	return nil
}

// checkAccess combines the operation and namespace checks.
func (c *kubernetesClient) checkAccess(operation, namespace string) error {
	if err := c.isOperationAllowed(operation); err != nil {
		return err
	}
	return c.isNamespaceRestricted(namespace)
}

// dryRunOption returns the DryRun value for mutating requests.
func (c *kubernetesClient) dryRunOption() []string {
	if c.dryRun {
		return []string{metav1.DryRunAll}
	}
	return nil
}

// logOperation logs an operation for debugging and audit purposes.
func (c *kubernetesClient) logOperation(operation, namespace, resource, name string) {
	if c.config.Logger != nil {
		c.config.Logger.Debug("kubernetes operation",
			"operation", operation,
			"context", c.currentContext,
			"namespace", namespace,
			"resource", resource,
			"name", name,
			"dry_run", c.dryRun,
		)
	}
}

func (c *kubernetesClient) debug(msg string, args ...any) {
	if c.config.DebugMode && c.config.Logger != nil {
		c.config.Logger.Debug(msg, args...)
	}
}
