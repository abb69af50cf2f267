package k8s

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func testPod(namespace, name string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Status:     corev1.PodStatus{Phase: corev1.PodRunning, PodIP: "10.0.0.5"},
	}
}

func TestKubernetesClient_ListPods(t *testing.T) {
	ctx := context.Background()

	t.Run("returns pods of the namespace", func(t *testing.T) {
		clientset := fake.NewSimpleClientset(
			testPod("default", "web-1"),
			testPod("default", "web-2"),
			testPod("other", "db-1"),
		)
		client := NewClientFromClientset(clientset, nil)

		pods, err := client.ListPods(ctx, "default")
		require.NoError(t, err)
		require.Len(t, pods, 2)

		names := []string{pods[0].Name, pods[1].Name}
		assert.ElementsMatch(t, []string{"web-1", "web-2"}, names)
	})

	t.Run("empty namespace yields empty slice", func(t *testing.T) {
		client := NewClientFromClientset(fake.NewSimpleClientset(), nil)

		pods, err := client.ListPods(ctx, "default")
		require.NoError(t, err)
		assert.Empty(t, pods)
	})

	t.Run("api error is wrapped", func(t *testing.T) {
		clientset := fake.NewSimpleClientset()
		clientset.PrependReactor("list", "pods", func(action k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, errors.New("connection refused")
		})
		client := NewClientFromClientset(clientset, nil)

		_, err := client.ListPods(ctx, "default")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list pods in namespace default")
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("restricted namespace", func(t *testing.T) {
		client := NewClientFromClientset(fake.NewSimpleClientset(), &ClientConfig{
			RestrictedNamespaces: []string{"kube-system"},
		})

		_, err := client.ListPods(ctx, "kube-system")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is restricted")
	})
}

func TestKubernetesClient_CreatePod(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pod", func(t *testing.T) {
		clientset := fake.NewSimpleClientset()
		client := NewClientFromClientset(clientset, nil)

		created, err := client.CreatePod(ctx, "default", testPod("", "web"))
		require.NoError(t, err)
		assert.Equal(t, "web", created.Name)

		got, err := clientset.CoreV1().Pods("default").Get(ctx, "web", metav1.GetOptions{})
		require.NoError(t, err)
		assert.Equal(t, "web", got.Name)
	})

	t.Run("duplicate name fails", func(t *testing.T) {
		clientset := fake.NewSimpleClientset(testPod("default", "web"))
		client := NewClientFromClientset(clientset, nil)

		_, err := client.CreatePod(ctx, "default", testPod("default", "web"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("blocked in non-destructive mode", func(t *testing.T) {
		clientset := fake.NewSimpleClientset()
		client := NewClientFromClientset(clientset, &ClientConfig{NonDestructiveMode: true})

		_, err := client.CreatePod(ctx, "default", testPod("", "web"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-destructive mode")
		assert.Empty(t, clientset.Actions())
	})
}

func TestKubernetesClient_DeletePod(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes pod", func(t *testing.T) {
		clientset := fake.NewSimpleClientset(testPod("default", "web"))
		client := NewClientFromClientset(clientset, nil)

		require.NoError(t, client.DeletePod(ctx, "default", "web"))

		pods, err := clientset.CoreV1().Pods("default").List(ctx, metav1.ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, pods.Items)
	})

	t.Run("missing pod", func(t *testing.T) {
		client := NewClientFromClientset(fake.NewSimpleClientset(), nil)

		err := client.DeletePod(ctx, "default", "ghost")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestKubernetesClient_GetLogs(t *testing.T) {
	ctx := context.Background()
	clientset := fake.NewSimpleClientset(testPod("default", "web"))
	client := NewClientFromClientset(clientset, nil)

	tailLines := int64(10)
	stream, err := client.GetLogs(ctx, "default", "web", "", LogOptions{TailLines: &tailLines})
	require.NoError(t, err)
	defer func() { _ = stream.Close() }()

	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "fake logs", string(data))

	opts := lastLogOptions(t, clientset)
	require.NotNil(t, opts.TailLines)
	assert.Equal(t, int64(10), *opts.TailLines)
}

// lastLogOptions returns the PodLogOptions of the most recent log request.
func lastLogOptions(t *testing.T, clientset *fake.Clientset) *corev1.PodLogOptions {
	t.Helper()
	actions := clientset.Actions()
	for i := len(actions) - 1; i >= 0; i-- {
		if actions[i].GetSubresource() != "log" {
			continue
		}
		generic, ok := actions[i].(k8stesting.GenericAction)
		require.True(t, ok)
		opts, ok := generic.GetValue().(*corev1.PodLogOptions)
		require.True(t, ok)
		return opts
	}
	t.Fatal("no log request recorded")
	return nil
}
