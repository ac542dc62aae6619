package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/teemow/ticktick-mcp/internal/instrumentation"
)

// MCPEndpointPath is where the streamable HTTP transport is mounted.
const MCPEndpointPath = "/mcp"

// DefaultHTTPAddr is the default listen address of the streamable HTTP transport.
const DefaultHTTPAddr = "127.0.0.1:8000"

// HTTPServer serves the MCP streamable HTTP transport together with the
// health endpoints. It is meant for a single local user and performs no
// client authentication.
type HTTPServer struct {
	mcpServer  *mcpserver.MCPServer
	health     *HealthChecker
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
	addr       string
	httpServer *http.Server
}

// NewHTTPServer creates an HTTP server for mcpServer on addr.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext, addr string, logger *slog.Logger) *HTTPServer {
	if addr == "" {
		addr = DefaultHTTPAddr
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &HTTPServer{
		mcpServer: mcpServer,
		health:    NewHealthChecker(sc),
		logger:    logger,
		addr:      addr,
	}
	if sc != nil {
		s.metrics = sc.Metrics()
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// HealthChecker returns the health checker, for toggling readiness during shutdown.
func (s *HTTPServer) HealthChecker() *HealthChecker {
	return s.health
}

// Handler builds the HTTP handler: the MCP endpoint, health endpoints,
// request tracing and request metrics.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath(MCPEndpointPath),
	)
	mux.Handle(MCPEndpointPath, streamable)
	s.health.RegisterHealthEndpoints(mux)

	var handler http.Handler = mux
	if s.metrics != nil {
		handler = metricsMiddleware(s.metrics, handler)
	}
	return otelhttp.NewHandler(handler, "mcp.http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + routeLabel(r.URL.Path)
		}),
	)
}

// Start listens on the configured address and serves until Shutdown.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on an existing listener.
func (s *HTTPServer) Serve(ln net.Listener) error {
	s.logger.Info("starting streamable HTTP server",
		"addr", ln.Addr().String(),
		"endpoint", MCPEndpointPath)
	return s.httpServer.Serve(ln)
}

// Shutdown marks the server not ready and drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	return s.httpServer.Shutdown(ctx)
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps streaming responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func metricsMiddleware(metrics *instrumentation.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.RecordHTTPRequest(r.Context(), r.Method, routeLabel(r.URL.Path), rec.status, time.Since(start))
	})
}

// routeLabel maps a request path onto the fixed set of served routes.
func routeLabel(path string) string {
	switch path {
	case MCPEndpointPath, "/healthz", "/readyz", "/healthz/detailed":
		return path
	default:
		return "other"
	}
}
