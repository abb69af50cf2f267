package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prathamesh1010/mcp-k8s/internal/instrumentation"
)

const (
	// DefaultMetricsAddr is the listen address of the metrics server.
	DefaultMetricsAddr = ":9090"

	// DefaultShutdownTimeout bounds graceful shutdown of HTTP listeners.
	DefaultShutdownTimeout = 30 * time.Second
)

// MetricsServerConfig configures a MetricsServer.
type MetricsServerConfig struct {
	// Addr is the listen address. Defaults to DefaultMetricsAddr.
	Addr string

	// InstrumentationProvider supplies the Prometheus handler.
	InstrumentationProvider *instrumentation.Provider
}

// MetricsServer serves /metrics and /healthz on a dedicated address so
// scrapes never go through the MCP transport.
type MetricsServer struct {
	addr   string
	server *http.Server

	mu      sync.Mutex
	started bool
}

// NewMetricsServer creates a metrics server. It does not listen until
// Start is called.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if config.InstrumentationProvider == nil {
		return nil, errors.New("instrumentation provider is required")
	}

	addr := config.Addr
	if addr == "" {
		addr = DefaultMetricsAddr
	}

	path := config.InstrumentationProvider.Config().PrometheusEndpoint
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	if handler := config.InstrumentationProvider.PrometheusHandler(); handler != nil {
		mux.Handle(path, handler)
	} else {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "metrics are exported via "+config.InstrumentationProvider.Config().MetricsExporter, http.StatusNotFound)
		})
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &MetricsServer{
		addr: addr,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Addr returns the configured listen address.
func (s *MetricsServer) Addr() string {
	return s.addr
}

// Start listens and serves until Shutdown. It returns http.ErrServerClosed
// after a clean shutdown.
func (s *MetricsServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	return s.server.Serve(ln)
}

// Shutdown stops the server gracefully. Calling it before Start is fine.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	if !started {
		return nil
	}
	return s.server.Shutdown(ctx)
}
