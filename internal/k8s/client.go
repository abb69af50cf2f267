package k8s

import (
	"context"
	"io"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
)

// Client defines the Kubernetes operations used by the executors.
// Credentials are resolved once when the client is built; every call
// targets the same cluster.
type Client interface {
	// Pod Operations
	PodManager

	// Deployment Operations
	DeploymentManager

	// InCluster reports whether the client authenticates with the pod's
	// service account rather than a kubeconfig.
	InCluster() bool
}

// PodManager handles pod-specific operations.
type PodManager interface {
	// ListPods returns the pods of a namespace in API order.
	ListPods(ctx context.Context, namespace string) ([]corev1.Pod, error)

	// CreatePod creates the given pod in namespace.
	CreatePod(ctx context.Context, namespace string, pod *corev1.Pod) (*corev1.Pod, error)

	// DeletePod removes a pod by name.
	DeletePod(ctx context.Context, namespace, name string) error

	// GetLogs streams the log of a pod container. An empty container name
	// selects the pod's only container.
	GetLogs(ctx context.Context, namespace, podName, containerName string, opts LogOptions) (io.ReadCloser, error)
}

// DeploymentManager handles deployment operations.
type DeploymentManager interface {
	// CreateDeployment creates the given deployment in namespace.
	CreateDeployment(ctx context.Context, namespace string, deployment *appsv1.Deployment) (*appsv1.Deployment, error)

	// ScaleDeployment sets spec.replicas of an existing deployment.
	ScaleDeployment(ctx context.Context, namespace, name string, replicas int32) (*appsv1.Deployment, error)

	// DeleteDeployment removes a deployment by name.
	DeleteDeployment(ctx context.Context, namespace, name string) error
}

// LogOptions configures log retrieval. A nil TailLines returns the whole log.
type LogOptions struct {
	TailLines *int64
}
