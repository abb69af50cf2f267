package k8s

import (
	"context"
	"fmt"
	"io"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// PodManager implementation

// ListPods returns all pods in namespace.
func (c *kubernetesClient) ListPods(ctx context.Context, namespace string) ([]corev1.Pod, error) {
	if err := c.checkAccess(OperationList, namespace); err != nil {
		return nil, err
	}

	c.logOperation("list-pods", namespace, "pod", "")

	list, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods in namespace %s: %w", namespace, err)
	}

	return list.Items, nil
}

// CreatePod creates a pod.
func (c *kubernetesClient) CreatePod(ctx context.Context, namespace string, pod *corev1.Pod) (*corev1.Pod, error) {
	if err := c.checkAccess(OperationCreate, namespace); err != nil {
		return nil, err
	}

	c.logOperation("create-pod", namespace, "pod", pod.Name)

	created, err := c.clientset.CoreV1().Pods(namespace).Create(ctx, pod, metav1.CreateOptions{
		DryRun: c.dryRunOption(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pod %s/%s: %w", namespace, pod.Name, err)
	}

	return created, nil
}

// DeletePod deletes a pod.
func (c *kubernetesClient) DeletePod(ctx context.Context, namespace, name string) error {
	if err := c.checkAccess(OperationDelete, namespace); err != nil {
		return err
	}

	c.logOperation("delete-pod", namespace, "pod", name)

	err := c.clientset.CoreV1().Pods(namespace).Delete(ctx, name, metav1.DeleteOptions{
		DryRun: c.dryRunOption(),
	})
	if err != nil {
		return fmt.Errorf("failed to delete pod %s/%s: %w", namespace, name, err)
	}

	return nil
}

// GetLogs retrieves logs from a pod container.
func (c *kubernetesClient) GetLogs(ctx context.Context, namespace, podName, containerName string, opts LogOptions) (io.ReadCloser, error) {
	if err := c.checkAccess(OperationLogs, namespace); err != nil {
		return nil, err
	}

	c.logOperation("get-logs", namespace, "pod", podName)

	logOpts := &corev1.PodLogOptions{
		Container: containerName,
		TailLines: opts.TailLines,
	}

	logs, err := c.clientset.CoreV1().Pods(namespace).GetLogs(podName, logOpts).Stream(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs for pod %s/%s: %w", namespace, podName, err)
	}

	return logs, nil
}
