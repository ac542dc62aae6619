// Package server provides the runtime around the MCP tools: the
// ServerContext shared by all handlers, the streamable HTTP transport with
// health endpoints, and the dedicated Prometheus metrics server.
//
// # Key Components
//
// ServerContext owns the TickTick API client and the token manager. It also
// carries the optional metrics recorder and audit logger used by tool
// instrumentation.
//
// HTTPServer mounts the streamable HTTP transport at /mcp together with
// /healthz, /readyz and /healthz/detailed. Requests are traced through
// otelhttp and counted in http_requests_total.
//
// MetricsServer exposes /metrics on its own port so operational metrics are
// not served next to the MCP endpoint.
package server
