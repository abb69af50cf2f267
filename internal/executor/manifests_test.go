package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDeployment(t *testing.T) {
	deployment := NewDeployment("apps", "redis", "redis:latest", 6379, 2)

	assert.Equal(t, "redis", deployment.Name)
	assert.Equal(t, "apps", deployment.Namespace)
	assert.Equal(t, int32(2), *deployment.Spec.Replicas)
	assert.Equal(t, "redis", deployment.Spec.Selector.MatchLabels[AppLabel])
	assert.Equal(t, deployment.Spec.Selector.MatchLabels, deployment.Spec.Template.Labels)
	assert.Equal(t, "redis:latest", deployment.Spec.Template.Spec.Containers[0].Image)
	assert.Equal(t, int32(6379), deployment.Spec.Template.Spec.Containers[0].Ports[0].ContainerPort)
}

func TestNewDeploymentLabelMapsAreIndependent(t *testing.T) {
	deployment := NewDeployment("apps", "redis", "redis:latest", 6379, 1)

	deployment.Labels["team"] = "games"
	deployment.Spec.Template.Labels["version"] = "v2"

	assert.Equal(t, map[string]string{AppLabel: "redis"}, deployment.Spec.Selector.MatchLabels)
	assert.NotContains(t, deployment.Spec.Template.Labels, "team")
	assert.NotContains(t, deployment.Labels, "version")
}

func TestNewNginxPod(t *testing.T) {
	pod := NewNginxPod("default", "web")

	assert.Equal(t, "web", pod.Name)
	assert.Equal(t, "default", pod.Namespace)
	assert.Len(t, pod.Spec.Containers, 1)
	assert.Equal(t, "nginx", pod.Spec.Containers[0].Name)
	assert.Equal(t, "nginx:latest", pod.Spec.Containers[0].Image)
	assert.Equal(t, int32(80), pod.Spec.Containers[0].Ports[0].ContainerPort)
}
