package executor

import (
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// AppLabel selects the pods of a deployment created by Deploy.
	AppLabel = "app"

	// DefaultReplicas is used by Deploy when no positive count is given.
	DefaultReplicas int32 = 1

	NginxImage               = "nginx:latest"
	NginxContainerName       = "nginx"
	NginxPort          int32 = 80
)

// NewDeployment builds a single-container deployment selected by app=<name>.
func NewDeployment(namespace, name, image string, port, replicas int32) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    appLabels(name),
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: appLabels(name)},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: appLabels(name)},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{
						Name:  name,
						Image: image,
						Ports: []corev1.ContainerPort{{ContainerPort: port}},
					}},
				},
			},
		},
	}
}

// appLabels returns a fresh label map on every call.
func appLabels(name string) map[string]string {
	return map[string]string{AppLabel: name}
}

// NewNginxPod builds the bare pod created by the create_nginx_pod tool.
func NewNginxPod(namespace, name string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{
				Name:  NginxContainerName,
				Image: NginxImage,
				Ports: []corev1.ContainerPort{{ContainerPort: NginxPort}},
			}},
		},
	}
}
