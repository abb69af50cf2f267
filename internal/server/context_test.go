package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prathamesh1010/mcp-k8s/internal/executor"
)

func TestNewServerContext(t *testing.T) {
	t.Run("requires a kubernetes client", func(t *testing.T) {
		_, err := NewServerContext(context.Background())
		assert.ErrorIs(t, err, ErrMissingK8sClient)
	})

	t.Run("nil options are rejected", func(t *testing.T) {
		_, err := NewServerContext(context.Background(), WithK8sClient(nil))
		assert.ErrorIs(t, err, ErrMissingK8sClient)

		_, err = NewServerContext(context.Background(), WithK8sClient(fakeClient(false)), WithLogger(nil))
		assert.ErrorIs(t, err, ErrMissingLogger)

		_, err = NewServerContext(context.Background(), WithK8sClient(fakeClient(false)), WithConfig(nil))
		assert.ErrorIs(t, err, ErrMissingConfig)
	})

	t.Run("builds an executor", func(t *testing.T) {
		sc, err := NewServerContext(context.Background(), WithK8sClient(fakeClient(false)))
		require.NoError(t, err)
		defer func() { _ = sc.Shutdown() }()

		require.NotNil(t, sc.Executor())
		assert.NotNil(t, sc.Logger())
		assert.Nil(t, sc.Metrics())

		result := sc.Executor().ListPods(context.Background(), "default")
		assert.True(t, result.Success)
	})

	t.Run("explicit executor wins", func(t *testing.T) {
		exec := executor.New(fakeClient(false))
		sc, err := NewServerContext(context.Background(),
			WithK8sClient(fakeClient(false)),
			WithExecutor(exec),
		)
		require.NoError(t, err)
		assert.Same(t, exec, sc.Executor())
	})
}

func TestServerContext_Options(t *testing.T) {
	sc, err := NewServerContext(context.Background(),
		WithK8sClient(fakeClient(true)),
		WithServerName("test-server"),
		WithDefaultNamespace("games"),
		WithNonDestructiveMode(true),
		WithDryRun(true),
		WithLogLevel("debug"),
		WithAllowedOperations([]string{"list"}),
	)
	require.NoError(t, err)

	cfg := sc.Config()
	assert.Equal(t, "test-server", cfg.ServerName)
	assert.Equal(t, "games", cfg.DefaultNamespace)
	assert.True(t, cfg.NonDestructiveMode)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"list"}, cfg.AllowedOperations)
	assert.True(t, sc.InClusterMode())
}

func TestServerContext_WithConfigClones(t *testing.T) {
	cfg := NewDefaultConfig()
	sc, err := NewServerContext(context.Background(), WithK8sClient(fakeClient(false)), WithConfig(cfg))
	require.NoError(t, err)

	cfg.DefaultNamespace = "mutated"
	cfg.AllowedOperations[0] = "delete"

	assert.Equal(t, "default", sc.Config().DefaultNamespace)
	assert.NotEqual(t, "delete", sc.Config().AllowedOperations[0])
}

func TestServerContext_Shutdown(t *testing.T) {
	provider := createTestProvider(t)
	sc, err := NewServerContext(context.Background(),
		WithK8sClient(fakeClient(false)),
		WithInstrumentationProvider(provider),
	)
	require.NoError(t, err)
	assert.NotNil(t, sc.Metrics())

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err())

	// Second call is a no-op.
	require.NoError(t, sc.Shutdown())
}

func TestConfig_Clone(t *testing.T) {
	var nilConfig *Config
	assert.Nil(t, nilConfig.Clone())

	cfg := NewDefaultConfig()
	clone := cfg.Clone()
	require.NotSame(t, cfg, clone)
	assert.Equal(t, cfg, clone)

	clone.AllowedOperations[0] = "scale"
	assert.NotEqual(t, "scale", cfg.AllowedOperations[0])
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "mcp-k8s", cfg.ServerName)
	assert.Equal(t, "default", cfg.DefaultNamespace)
	assert.False(t, cfg.NonDestructiveMode)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, []string{"list", "logs"}, cfg.AllowedOperations)
}
