package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prathamesh1010/mcp-k8s/internal/chat"
	"github.com/prathamesh1010/mcp-k8s/internal/executor"
	"github.com/prathamesh1010/mcp-k8s/internal/instrumentation"
	"github.com/prathamesh1010/mcp-k8s/internal/interpreter"
	"github.com/prathamesh1010/mcp-k8s/internal/logging"
)

const (
	// DefaultPollInterval is the wait between two polls of the channel.
	DefaultPollInterval = time.Second

	// DefaultNamespace is where chat commands operate unless configured.
	DefaultNamespace = "default"

	// RejectMessage is posted when a line has no usable action or target.
	RejectMessage = "Invalid command or target not found"

	receivedFormat = "Received command: %s"
	errorFormat    = "Error processing command: %v"
)

// Actions is the subset of executor.Executor the loop routes to.
type Actions interface {
	Deploy(ctx context.Context, namespace, name, image string, port, replicas int32) executor.Result
	Scale(ctx context.Context, namespace, name string, replicas int32) executor.Result
	Delete(ctx context.Context, namespace, name string) executor.Result
	ListPods(ctx context.Context, namespace string) executor.Result
}

var _ Actions = (*executor.Executor)(nil)

// Option configures a Loop.
type Option func(*Loop)

// WithNamespace sets the namespace commands operate in.
func WithNamespace(namespace string) Option {
	return func(l *Loop) {
		if namespace != "" {
			l.namespace = namespace
		}
	}
}

// WithPollInterval sets the wait between polls. Non-positive values are
// ignored.
func WithPollInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.pollInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(l *Loop) {
		l.metrics = metrics
	}
}

// Loop reads chat lines, turns them into commands and posts the outcome.
// Commands are handled one at a time in arrival order.
type Loop struct {
	channel      chat.Channel
	actions      Actions
	interpreter  *interpreter.Interpreter
	namespace    string
	pollInterval time.Duration
	logger       *slog.Logger
	metrics      *instrumentation.Metrics
}

// New creates a loop. A nil interpreter uses the default template catalog.
func New(channel chat.Channel, actions Actions, interp *interpreter.Interpreter, opts ...Option) *Loop {
	if interp == nil {
		interp = interpreter.New(nil)
	}
	l := &Loop{
		channel:      channel,
		actions:      actions,
		interpreter:  interp,
		namespace:    DefaultNamespace,
		pollInterval: DefaultPollInterval,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run polls until ctx is cancelled or the channel reports chat.ErrClosed.
// Poll failures are logged and polling continues.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("chat dispatch loop started",
		logging.Namespace(l.namespace),
		slog.Duration("poll_interval", l.pollInterval),
		slog.Any("templates", l.interpreter.Catalog().Names()))

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		if err := l.Tick(ctx); errors.Is(err, chat.ErrClosed) {
			l.logger.Info("chat channel closed, stopping dispatch loop")
			return nil
		}

		select {
		case <-ctx.Done():
			l.logger.Info("chat dispatch loop stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick runs one poll cycle and handles every event it returned. It only
// returns an error when the poll failed.
func (l *Loop) Tick(ctx context.Context) error {
	events, err := l.channel.Poll(ctx)
	if err != nil {
		if !errors.Is(err, chat.ErrClosed) {
			l.logger.Warn("failed to poll chat channel", logging.Err(err))
		}
		return err
	}

	for _, event := range events {
		if ctx.Err() != nil {
			return nil
		}
		l.Handle(ctx, event.Message)
	}
	return nil
}

// Handle processes a single chat line and posts the acknowledgement and
// the outcome.
func (l *Loop) Handle(ctx context.Context, text string) {
	l.post(ctx, fmt.Sprintf(receivedFormat, text))
	l.post(ctx, l.execute(ctx, text))
}

// execute interprets and routes text. A panic anywhere below becomes the
// returned reply.
func (l *Loop) execute(ctx context.Context, text string) (reply string) {
	action := interpreter.ActionNone.String()
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("panic while processing chat command",
				logging.Action(action),
				slog.String("command", logging.Truncate(text, 120)),
				slog.Any("panic", r))
			l.metrics.RecordChatCommand(ctx, action, instrumentation.StatusError)
			reply = fmt.Sprintf(errorFormat, r)
		}
	}()

	cmd := l.interpreter.Interpret(text)
	action = cmd.Action.String()

	ctx, span := instrumentation.StartChatSpan(ctx, action, cmd.Target)
	defer span.End()

	logger := l.logger.With(logging.Action(action), logging.Target(cmd.Target))

	result, routed := l.route(ctx, cmd)
	if !routed {
		logger.Debug("chat command rejected", slog.String("command", logging.Truncate(text, 120)))
		l.metrics.RecordChatCommand(ctx, action, instrumentation.StatusRejected)
		return RejectMessage
	}

	if result.Success {
		instrumentation.SetSpanSuccess(span)
		l.metrics.RecordChatCommand(ctx, action, instrumentation.StatusSuccess)
		logger.Info("chat command completed", logging.Status(logging.StatusSuccess))
	} else {
		instrumentation.SetSpanError(span, errors.New(result.Message))
		l.metrics.RecordChatCommand(ctx, action, instrumentation.StatusError)
		logger.Warn("chat command failed",
			logging.Status(logging.StatusError),
			slog.String(logging.KeyError, result.Message))
	}
	return result.Message
}

// route calls the executor for cmd. It reports false when cmd cannot be
// routed, in which case no executor was called.
func (l *Loop) route(ctx context.Context, cmd interpreter.Command) (executor.Result, bool) {
	switch cmd.Action {
	case interpreter.ActionDeploy:
		tmpl, ok := l.interpreter.Catalog().Lookup(cmd.Target)
		if !cmd.HasTarget() || !ok {
			return executor.Result{}, false
		}
		return l.actions.Deploy(ctx, l.namespace, tmpl.Name, tmpl.Image, tmpl.Port, executor.DefaultReplicas), true

	case interpreter.ActionScale:
		if !cmd.HasTarget() || !cmd.HasValue() {
			return executor.Result{}, false
		}
		return l.actions.Scale(ctx, l.namespace, cmd.Target, cmd.Value), true

	case interpreter.ActionDelete:
		if !cmd.HasTarget() {
			return executor.Result{}, false
		}
		return l.actions.Delete(ctx, l.namespace, cmd.Target), true

	case interpreter.ActionList:
		return l.actions.ListPods(ctx, l.namespace), true
	}

	return executor.Result{}, false
}

func (l *Loop) post(ctx context.Context, message string) {
	if err := l.channel.Post(ctx, message); err != nil {
		l.logger.Warn("failed to post chat message",
			slog.String("message", logging.Truncate(message, 80)),
			logging.Err(err))
	}
}
