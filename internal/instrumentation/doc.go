// Package instrumentation wires OpenTelemetry metrics, tracing and audit
// logging into ticktick-mcp.
//
// Metrics are exported through the Prometheus default registry (served by
// the metrics server of the streamable HTTP transport), OTLP or stdout:
//
//   - http_requests_total, http_request_duration_seconds
//   - ticktick_api_operations_total, ticktick_api_operation_duration_seconds
//   - oauth_auth_total, oauth_token_refresh_total
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds
//
// API metrics are labeled by service and operation. With
// METRICS_DETAILED_LABELS the request route is added, with project and task
// identifiers replaced by {id} (see NormalizeAPIPath).
//
// Spans are named tool.<name> for MCP tool calls and
// ticktick.<service>.<operation> for open API calls. Tracing is off unless
// TRACING_EXPORTER is set; the sampling ratio defaults to 1.0.
//
// Configuration is read from the environment by DefaultConfig:
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordToolInvocation(ctx, "create_task", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
