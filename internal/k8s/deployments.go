package k8s

import (
	"context"
	"encoding/json"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
)

// DeploymentManager implementation

// CreateDeployment creates a deployment.
func (c *kubernetesClient) CreateDeployment(ctx context.Context, namespace string, deployment *appsv1.Deployment) (*appsv1.Deployment, error) {
	if err := c.checkAccess(OperationCreate, namespace); err != nil {
		return nil, err
	}

	c.logOperation("create-deployment", namespace, "deployment", deployment.Name)

	created, err := c.clientset.AppsV1().Deployments(namespace).Create(ctx, deployment, metav1.CreateOptions{
		DryRun: c.dryRunOption(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create deployment %s/%s: %w", namespace, deployment.Name, err)
	}

	return created, nil
}

// ScaleDeployment merge-patches spec.replicas. Only the replica count is
// touched; the rest of the deployment is left as the API server has it.
func (c *kubernetesClient) ScaleDeployment(ctx context.Context, namespace, name string, replicas int32) (*appsv1.Deployment, error) {
	if err := c.checkAccess(OperationScale, namespace); err != nil {
		return nil, err
	}
	if replicas < 0 {
		return nil, fmt.Errorf("replica count must not be negative, got %d", replicas)
	}

	c.logOperation("scale-deployment", namespace, "deployment", name)

	patch, err := replicasPatch(replicas)
	if err != nil {
		return nil, err
	}

	scaled, err := c.clientset.AppsV1().Deployments(namespace).Patch(ctx, name, types.MergePatchType, patch, metav1.PatchOptions{
		DryRun: c.dryRunOption(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scale deployment %s/%s: %w", namespace, name, err)
	}

	return scaled, nil
}

// DeleteDeployment deletes a deployment.
func (c *kubernetesClient) DeleteDeployment(ctx context.Context, namespace, name string) error {
	if err := c.checkAccess(OperationDelete, namespace); err != nil {
		return err
	}

	c.logOperation("delete-deployment", namespace, "deployment", name)

	err := c.clientset.AppsV1().Deployments(namespace).Delete(ctx, name, metav1.DeleteOptions{
		DryRun: c.dryRunOption(),
	})
	if err != nil {
		return fmt.Errorf("failed to delete deployment %s/%s: %w", namespace, name, err)
	}

	return nil
}

func replicasPatch(replicas int32) ([]byte, error) {
	patch := map[string]any{
		"spec": map[string]any{
			"replicas": replicas,
		},
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scale patch: %w", err)
	}
	return data, nil
}
