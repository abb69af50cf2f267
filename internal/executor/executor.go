package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/prathamesh1010/mcp-k8s/internal/instrumentation"
	"github.com/prathamesh1010/mcp-k8s/internal/k8s"
	"github.com/prathamesh1010/mcp-k8s/internal/logging"
)

const (
	resourcePod        = "pod"
	resourceDeployment = "deployment"
)

// PodRecord is the caller-facing projection of a pod.
type PodRecord struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Status    string `json:"status"`
	IP        string `json:"ip"`
}

// Result is the outcome of one executor call. On failure Message carries
// the underlying error text verbatim.
type Result struct {
	Success bool
	Message string
	Pods    []PodRecord
	Logs    string
}

// Executor wraps single Kubernetes calls and normalizes their outcome.
// Every method issues exactly one API request and never retries.
type Executor struct {
	client  k8s.Client
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithMetrics sets the metrics recorder. A nil recorder is allowed.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(e *Executor) {
		e.metrics = metrics
	}
}

// New creates an Executor over client.
func New(client k8s.Client, opts ...Option) *Executor {
	e := &Executor{
		client: client,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Deploy creates a deployment running image with one exposed port.
// Replica counts below one fall back to DefaultReplicas.
func (e *Executor) Deploy(ctx context.Context, namespace, name, image string, port, replicas int32) Result {
	if replicas < 1 {
		replicas = DefaultReplicas
	}

	inv := invocation{
		operation:    instrumentation.OperationCreate,
		resourceType: resourceDeployment,
		namespace:    namespace,
		name:         name,
		replicas:     replicas,
	}
	return e.run(ctx, inv, func(ctx context.Context) (Result, error) {
		deployment := NewDeployment(namespace, name, image, port, replicas)
		if _, err := e.client.CreateDeployment(ctx, namespace, deployment); err != nil {
			return Result{}, err
		}
		return Result{
			Success: true,
			Message: fmt.Sprintf("Deployment %s created in namespace %s (image %s, port %d, replicas %d)", name, namespace, image, port, replicas),
		}, nil
	})
}

// Scale sets the replica count of an existing deployment.
func (e *Executor) Scale(ctx context.Context, namespace, name string, replicas int32) Result {
	inv := invocation{
		operation:    instrumentation.OperationScale,
		resourceType: resourceDeployment,
		namespace:    namespace,
		name:         name,
		replicas:     replicas,
	}
	return e.run(ctx, inv, func(ctx context.Context) (Result, error) {
		if _, err := e.client.ScaleDeployment(ctx, namespace, name, replicas); err != nil {
			return Result{}, err
		}
		return Result{
			Success: true,
			Message: fmt.Sprintf("Deployment %s scaled to %d replicas", name, replicas),
		}, nil
	})
}

// Delete removes a deployment.
func (e *Executor) Delete(ctx context.Context, namespace, name string) Result {
	inv := invocation{
		operation:    instrumentation.OperationDelete,
		resourceType: resourceDeployment,
		namespace:    namespace,
		name:         name,
	}
	return e.run(ctx, inv, func(ctx context.Context) (Result, error) {
		if err := e.client.DeleteDeployment(ctx, namespace, name); err != nil {
			return Result{}, err
		}
		return Result{
			Success: true,
			Message: fmt.Sprintf("Deployment %s deleted from namespace %s", name, namespace),
		}, nil
	})
}

// ListPods lists the pods of namespace. Pods is never nil on success so
// that an empty namespace serializes as an empty list.
func (e *Executor) ListPods(ctx context.Context, namespace string) Result {
	inv := invocation{
		operation:    instrumentation.OperationList,
		resourceType: resourcePod,
		namespace:    namespace,
	}
	return e.run(ctx, inv, func(ctx context.Context) (Result, error) {
		pods, err := e.client.ListPods(ctx, namespace)
		if err != nil {
			return Result{}, err
		}

		records := make([]PodRecord, 0, len(pods))
		names := make([]string, 0, len(pods))
		for _, pod := range pods {
			records = append(records, PodRecord{
				Name:      pod.Name,
				Namespace: pod.Namespace,
				Status:    string(pod.Status.Phase),
				IP:        pod.Status.PodIP,
			})
			names = append(names, pod.Name)
		}

		message := fmt.Sprintf("No pods found in namespace %s", namespace)
		if len(names) > 0 {
			message = "Pods: " + strings.Join(names, ", ")
		}

		return Result{Success: true, Message: message, Pods: records}, nil
	})
}

// GetLogs reads the log of a pod. tailLines limits the result to the last
// lines of the log; zero returns all of it.
func (e *Executor) GetLogs(ctx context.Context, namespace, podName string, tailLines int64) Result {
	inv := invocation{
		operation:    instrumentation.OperationLogs,
		resourceType: resourcePod,
		namespace:    namespace,
		name:         podName,
	}
	return e.run(ctx, inv, func(ctx context.Context) (Result, error) {
		var opts k8s.LogOptions
		if tailLines > 0 {
			opts.TailLines = &tailLines
		}
		stream, err := e.client.GetLogs(ctx, namespace, podName, "", opts)
		if err != nil {
			return Result{}, err
		}
		defer func() { _ = stream.Close() }()

		data, err := io.ReadAll(stream)
		if err != nil {
			return Result{}, fmt.Errorf("failed to read logs for pod %s/%s: %w", namespace, podName, err)
		}

		return Result{
			Success: true,
			Message: fmt.Sprintf("Retrieved logs for pod %s", podName),
			Logs:    string(data),
		}, nil
	})
}

// CreatePod creates an nginx pod.
func (e *Executor) CreatePod(ctx context.Context, namespace, podName string) Result {
	inv := invocation{
		operation:    instrumentation.OperationCreate,
		resourceType: resourcePod,
		namespace:    namespace,
		name:         podName,
	}
	return e.run(ctx, inv, func(ctx context.Context) (Result, error) {
		if _, err := e.client.CreatePod(ctx, namespace, NewNginxPod(namespace, podName)); err != nil {
			return Result{}, err
		}
		return Result{
			Success: true,
			Message: fmt.Sprintf("Pod %s created in namespace %s", podName, namespace),
		}, nil
	})
}

// DeletePod deletes a pod.
func (e *Executor) DeletePod(ctx context.Context, namespace, podName string) Result {
	inv := invocation{
		operation:    instrumentation.OperationDelete,
		resourceType: resourcePod,
		namespace:    namespace,
		name:         podName,
	}
	return e.run(ctx, inv, func(ctx context.Context) (Result, error) {
		if err := e.client.DeletePod(ctx, namespace, podName); err != nil {
			return Result{}, err
		}
		return Result{
			Success: true,
			Message: fmt.Sprintf("Pod %s deleted from namespace %s", podName, namespace),
		}, nil
	})
}

// invocation describes one executor call for logs, spans and metrics.
type invocation struct {
	operation    string
	resourceType string
	namespace    string
	name         string
	replicas     int32
}

func (e *Executor) run(ctx context.Context, c invocation, fn func(context.Context) (Result, error)) Result {
	attrs := instrumentation.NewSpanAttributeBuilder().WithResource("", c.name)
	if c.replicas > 0 {
		attrs.WithReplicas(c.replicas)
	}
	ctx, span := instrumentation.StartK8sSpan(ctx, c.operation, c.resourceType, c.namespace, attrs.Build()...)
	defer span.End()

	logger := logging.WithOperation(e.logger, c.operation).With(
		logging.Namespace(c.namespace),
		logging.ResourceType(c.resourceType),
	)
	if c.name != "" {
		logger = logger.With(logging.ResourceName(c.name))
	}

	start := time.Now()
	result, err := safeCall(ctx, fn)
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		result = Result{Success: false, Message: err.Error()}
		instrumentation.SetSpanError(span, err)
		logger.Warn("kubernetes operation failed",
			logging.SanitizedErr(err),
			slog.Duration(logging.KeyDuration, duration))
	} else {
		instrumentation.SetSpanSuccess(span)
		logger.Info("kubernetes operation completed",
			logging.Status(logging.StatusSuccess),
			slog.Duration(logging.KeyDuration, duration))
	}

	if c.resourceType == resourcePod {
		e.metrics.RecordPodOperation(ctx, c.operation, c.namespace, status, duration)
	} else {
		e.metrics.RecordK8sOperation(ctx, c.operation, c.resourceType, c.namespace, status, duration)
	}

	return result
}

// safeCall converts a panic in fn into an error so nothing escapes the
// executor boundary.
func safeCall(ctx context.Context, fn func(context.Context) (Result, error)) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected error: %v", r)
		}
	}()
	return fn(ctx)
}
