// Package k8s provides the Kubernetes client used by mcp-k8s.
//
// The Client interface is intentionally narrow. It covers the calls the
// action executors make and nothing else:
//
//   - PodManager: list, create and delete pods, stream pod logs
//   - DeploymentManager: create, scale and delete deployments
//
// Credentials are resolved once in NewClient. With ClientConfig.InCluster
// set, the pod's service account is required. Otherwise the client tries
// in-cluster authentication when KUBERNETES_SERVICE_HOST is present and
// falls back to the kubeconfig (explicit path, $KUBECONFIG, ~/.kube/config).
//
// Safety settings are enforced before any request leaves the process:
// non-destructive mode blocks create, delete and scale unless dry-run is
// enabled or the operation is listed in AllowedOperations, and
// RestrictedNamespaces rejects calls against the listed namespaces.
//
// Example usage:
//
//	client, err := k8s.NewClient(&k8s.ClientConfig{Logger: logger})
//	if err != nil {
//		return err
//	}
//
//	pods, err := client.ListPods(ctx, "default")
//	if err != nil {
//		return err
//	}
//
//	_, err = client.ScaleDeployment(ctx, "default", "nginx", 3)
package k8s
