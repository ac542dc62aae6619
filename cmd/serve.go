package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ticktick-mcp/internal/auth"
	"github.com/teemow/ticktick-mcp/internal/credentials"
	"github.com/teemow/ticktick-mcp/internal/instrumentation"
	"github.com/teemow/ticktick-mcp/internal/logging"
	"github.com/teemow/ticktick-mcp/internal/resources"
	"github.com/teemow/ticktick-mcp/internal/server"
	"github.com/teemow/ticktick-mcp/internal/ticktick"
	"github.com/teemow/ticktick-mcp/internal/tools/ticktick_tools"
)

// Supported transports.
const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// Supported credential backends.
const (
	backendFile    = "file"
	backendKeyring = "keyring"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// serveOptions is the resolved configuration of the serve command.
type serveOptions struct {
	Transport         string
	Host              string
	Port              int
	ReadOnly          bool
	Debug             bool
	LogFormat         string
	CredentialsFile   string
	CredentialBackend string
	WatchCredentials  bool
	Metrics           MetricsConfig
}

// HTTPAddr is the listen address of the streamable HTTP transport.
func (o serveOptions) HTTPAddr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// loadServeOptions reads the serve flags through v and validates them.
func loadServeOptions(v *viper.Viper) (serveOptions, error) {
	opts := serveOptions{
		Transport:         v.GetString("transport"),
		Host:              v.GetString("host"),
		Port:              v.GetInt("port"),
		ReadOnly:          v.GetBool("read-only"),
		Debug:             v.GetBool("debug"),
		LogFormat:         v.GetString("log-format"),
		CredentialsFile:   v.GetString("credentials-file"),
		CredentialBackend: v.GetString("credential-backend"),
		WatchCredentials:  v.GetBool("watch-credentials"),
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics-enabled"),
			Addr:    v.GetString("metrics-addr"),
		},
	}

	switch opts.Transport {
	case transportStdio, transportStreamableHTTP:
	default:
		return opts, fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.Transport)
	}
	switch opts.CredentialBackend {
	case backendFile, backendKeyring:
	default:
		return opts, fmt.Errorf("unsupported credential backend: %s (supported: file, keyring)", opts.CredentialBackend)
	}
	if opts.Port < 1 || opts.Port > 65535 {
		return opts, fmt.Errorf("invalid port %d", opts.Port)
	}
	return opts, nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide TickTick
project and task tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport on --host:--port at /mcp

Credentials:
  Tokens are read from the credential file (default .env in the working
  directory). Run "ticktick-mcp auth" first. TICKTICK_* environment
  variables override values from the file. With --credential-backend keyring
  the client secret and tokens are kept in the OS keyring instead.

Read-Only Mode:
  Use --read-only to register only tools that do not change data.

Every flag can also be set as TICKTICK_MCP_<FLAG>, for example
TICKTICK_MCP_TRANSPORT=streamable-http.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := bindConfig(cmd)
			if err != nil {
				return err
			}
			opts, err := loadServeOptions(v)
			if err != nil {
				return err
			}
			return runServe(opts)
		},
	}

	addServeFlags(cmd)
	return cmd
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().String("transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().String("host", "127.0.0.1", "Host to bind for the streamable-http transport")
	cmd.Flags().Int("port", 8000, "Port to bind for the streamable-http transport")
	cmd.Flags().Bool("read-only", false, "Only register tools that do not change data")
	cmd.Flags().Bool("debug", false, "Enable debug logging")
	cmd.Flags().String("log-format", string(logging.FormatText), "Log format: text or json")
	cmd.Flags().String("credentials-file", credentials.DefaultPath, "Path of the credential file")
	cmd.Flags().String("credential-backend", backendFile, "Where secrets are stored: file or keyring")
	cmd.Flags().Bool("watch-credentials", true, "Reload tokens when the credential file changes")
	cmd.Flags().Bool("metrics-enabled", true, "Enable the metrics server on a dedicated port (streamable-http only)")
	cmd.Flags().String("metrics-addr", server.DefaultMetricsAddr, "Metrics server address")
}

// newCredentialStore returns the store for backend.
func newCredentialStore(path, backend string) credentials.Store {
	file := credentials.NewFileStore(path)
	if backend == backendKeyring {
		return credentials.NewKeyringStore(file)
	}
	return file
}

func runServe(opts serveOptions) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Logs always go to stderr so they never mix with the stdio protocol stream.
	logger := logging.New(os.Stderr, logging.Format(opts.LogFormat), opts.Debug)
	slog.SetDefault(logger)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	var metrics *instrumentation.Metrics
	if provider.Enabled() {
		metrics = provider.Metrics()
	}

	store := newCredentialStore(opts.CredentialsFile, opts.CredentialBackend)
	manager, err := auth.NewManager(store,
		auth.WithLogger(logger),
		auth.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	loc, err := ticktick.UserLocation()
	if err != nil {
		return err
	}
	client := ticktick.NewClient(manager.Credentials().APIBaseURL(), manager,
		ticktick.WithLogger(logger),
		ticktick.WithMetrics(metrics),
		ticktick.WithLocation(loc),
	)

	serverContext, err := server.NewServerContext(shutdownCtx, client, manager)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = serverContext.Shutdown() }()

	serverContext.SetLogger(logger)
	if provider.Enabled() {
		serverContext.SetMetrics(metrics)
		serverContext.SetAuditLogger(instrumentation.NewAuditLogger(logger, instrConfig.AuditLogging))
	}

	if manager.State() != auth.StateAuthenticated {
		logger.Warn("no access token available, tool calls will fail until authorized",
			"hint", "run `ticktick-mcp auth`")
	}

	if opts.WatchCredentials {
		go watchCredentials(shutdownCtx, opts.CredentialsFile, manager, logger)
	}

	mcpSrv := mcpserver.NewMCPServer("ticktick-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	if opts.ReadOnly {
		logger.Info("starting server in read-only mode")
	}
	if err := registerAllTools(mcpSrv, serverContext, opts.ReadOnly); err != nil {
		return err
	}

	switch opts.Transport {
	case transportStdio:
		return runStdioServer(mcpSrv)
	case transportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, opts, provider, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.Transport)
	}
}

// watchCredentials reloads the token manager whenever the credential file
// is rewritten, e.g. by "ticktick-mcp auth" in another terminal.
func watchCredentials(ctx context.Context, path string, manager *auth.Manager, logger *slog.Logger) {
	err := credentials.Watch(ctx, path, func() {
		if err := manager.Reload(); err != nil {
			logger.Warn("failed to reload credentials", logging.Err(err))
			return
		}
		logger.Debug("credentials reloaded", "state", string(manager.State()))
	})
	if err != nil {
		logger.Warn("credential file is not watched", logging.Err(err))
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools and resources
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, readOnly bool) error {
	if err := ticktick_tools.RegisterTickTickTools(mcpSrv, ctx, readOnly); err != nil {
		return fmt.Errorf("failed to register TickTick tools: %w", err)
	}
	if err := resources.RegisterTickTickResources(mcpSrv, ctx); err != nil {
		return fmt.Errorf("failed to register resources: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, opts serveOptions, provider *instrumentation.Provider, logger *slog.Logger) error {
	var metricsServer *server.MetricsServer
	if opts.Metrics.Enabled && provider.Enabled() && !provider.ServesPrometheus() {
		logger.Info("metrics server disabled, metrics are pushed by the configured exporter")
	}
	if opts.Metrics.Enabled && provider.ServesPrometheus() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.Metrics.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", logging.Err(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	httpServer := server.NewHTTPServer(mcpSrv, serverContext, opts.HTTPAddr(), logger)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
