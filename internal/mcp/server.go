package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/honeycarbs/jobscout/internal/config"
	"github.com/honeycarbs/jobscout/internal/metrics"
	"github.com/honeycarbs/jobscout/internal/mcp/tools"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

const (
	implementationName = "jobscout"

	StreamPath  = "/mcp/stream"
	HealthPath  = "/healthz"
	MetricsPath = "/metrics"
)

// Server wraps an MCP SDK server with an HTTP listener
type Server struct {
	logger *logging.Logger
	srv    *http.Server
	tools  []string

	started atomic.Bool
}

// Option configures the HTTP surface of Server
type Option func(*options)

type options struct {
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	version  string
}

// WithMetrics records request metrics and serves gatherer on /metrics
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(o *options) {
		o.metrics = m
		o.gatherer = gatherer
	}
}

// WithVersion sets the version reported to MCP clients
func WithVersion(v string) Option {
	return func(o *options) {
		o.version = v
	}
}

// NewServer constructs the MCP HTTP server
func NewServer(log *logging.Logger, cfg config.ServerConfig, res Resources, opts ...Option) (*Server, error) {
	if res.Searcher == nil {
		return nil, fmt.Errorf("mcp: searcher is required")
	}
	if log == nil {
		log = logging.Nop()
	}
	o := options{version: "dev"}
	for _, opt := range opts {
		opt(&o)
	}

	mcpServer := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    implementationName,
		Version: o.version,
	}, nil)
	names := tools.Register(mcpServer, log.Named("tools"), res.toolOptions()...)

	stream := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return mcpServer
	}, nil)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(requestLogger(log))
	if o.metrics != nil {
		r.Use(o.metrics.Middleware())
	}

	r.Handle(StreamPath, stream)
	r.Get(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if o.gatherer != nil {
		r.Handle(MetricsPath, promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}))
	}

	return &Server{
		logger: log,
		tools:  names,
		srv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Tools lists the registered tool names
func (s *Server) Tools() []string {
	return s.tools
}

// Run starts the HTTP server and blocks until shutdown
func (s *Server) Run() error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	s.logger.Info("MCP HTTP server listening", "addr", s.srv.Addr, "tools", s.tools)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutdown requested for MCP HTTP server")
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("MCP HTTP server shutdown with error", "err", err)
		return err
	}

	s.logger.Info("MCP HTTP server shutdown complete")
	return nil
}

func requestLogger(log *logging.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.Debug("http request",
				"request_id", chiMiddleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"latency", time.Since(start),
			)
		})
	}
}
