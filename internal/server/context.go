package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/ticktick-mcp/internal/auth"
	"github.com/teemow/ticktick-mcp/internal/instrumentation"
	"github.com/teemow/ticktick-mcp/internal/ticktick"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	client      *ticktick.Client
	tokens      *auth.Manager
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	logger      *slog.Logger
	mu          sync.RWMutex
	shutdown    bool
}

// NewServerContext creates a new server context around a TickTick client.
// tokens may be nil in tests that never inspect the auth state.
func NewServerContext(ctx context.Context, client *ticktick.Client, tokens *auth.Manager) (*ServerContext, error) {
	if client == nil {
		return nil, fmt.Errorf("ticktick client is required")
	}
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		client: client,
		tokens: tokens,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Client returns the TickTick API client
func (sc *ServerContext) Client() *ticktick.Client {
	return sc.client
}

// Tokens returns the token manager, or nil if none was configured
func (sc *ServerContext) Tokens() *auth.Manager {
	return sc.tokens
}

// AuthState returns the token lifecycle state, or "unknown" without a manager.
func (sc *ServerContext) AuthState() string {
	if sc.tokens == nil {
		return instrumentation.StatusUnknown
	}
	return string(sc.tokens.State())
}

// SetMetrics sets the metrics recorder used by tool instrumentation.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, or nil if instrumentation is disabled.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger used by tool instrumentation.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the audit logger, or nil if audit logging is disabled.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetLogger sets the logger handed to tool handlers.
func (sc *ServerContext) SetLogger(l *slog.Logger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.logger = l
}

// Logger returns the configured logger, falling back to slog.Default.
func (sc *ServerContext) Logger() *slog.Logger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if sc.logger == nil {
		return slog.Default()
	}
	return sc.logger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
