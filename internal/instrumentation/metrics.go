package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric label keys.
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrTool      = "tool"
	attrRoute     = "route"
)

var (
	httpBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0}
	callBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}
)

// Metrics records the server's counters and histograms. The zero value, and
// a nil *Metrics, record nothing.
type Metrics struct {
	httpRequests    metric.Int64Counter
	httpDuration    metric.Float64Histogram
	apiCalls        metric.Int64Counter
	apiDuration     metric.Float64Histogram
	oauthExchanges  metric.Int64Counter
	oauthRefreshes  metric.Int64Counter
	toolInvocations metric.Int64Counter
	toolDuration    metric.Float64Histogram
	detailedLabels  bool
	initialized     bool
}

// NewMetrics creates all instruments on meter. With detailedLabels the
// normalized request route is attached to API call metrics.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	counters := []struct {
		dst        *metric.Int64Counter
		name, desc string
		unit       string
	}{
		{&m.httpRequests, "http_requests_total", "Total number of HTTP requests", "{request}"},
		{&m.apiCalls, "ticktick_api_operations_total", "Total number of TickTick open API operations", "{operation}"},
		{&m.oauthExchanges, "oauth_auth_total", "Total number of OAuth authorization code exchanges", "{attempt}"},
		{&m.oauthRefreshes, "oauth_token_refresh_total", "Total number of OAuth token refresh attempts", "{attempt}"},
		{&m.toolInvocations, "mcp_tool_invocations_total", "Total number of MCP tool invocations", "{invocation}"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
		*c.dst = counter
	}

	histograms := []struct {
		dst        *metric.Float64Histogram
		name, desc string
		buckets    []float64
	}{
		{&m.httpDuration, "http_request_duration_seconds", "HTTP request duration in seconds", httpBuckets},
		{&m.apiDuration, "ticktick_api_operation_duration_seconds", "TickTick open API operation duration in seconds", callBuckets},
		{&m.toolDuration, "mcp_tool_duration_seconds", "MCP tool execution duration in seconds", callBuckets},
	}
	for _, h := range histograms {
		histogram, err := meter.Float64Histogram(h.name,
			metric.WithDescription(h.desc),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(h.buckets...),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s histogram: %w", h.name, err)
		}
		*h.dst = histogram
	}

	m.initialized = true
	return m, nil
}

func (m *Metrics) ready() bool {
	return m != nil && m.initialized
}

// RecordHTTPRequest records one request served by the streamable HTTP transport.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if !m.ready() {
		return
	}
	opt := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequests.Add(ctx, 1, opt)
	m.httpDuration.Record(ctx, duration.Seconds(), opt)
}

// RecordAPICall records one TickTick open API call. The duration includes a
// refresh-and-retry. path is only used with detailed labels.
func (m *Metrics) RecordAPICall(ctx context.Context, service, operation, path, status string, duration time.Duration) {
	if !m.ready() {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && path != "" {
		attrs = append(attrs, attribute.String(attrRoute, NormalizeAPIPath(path)))
	}
	opt := metric.WithAttributes(attrs...)
	m.apiCalls.Add(ctx, 1, opt)
	m.apiDuration.Record(ctx, duration.Seconds(), opt)
}

// RecordOAuthAuth counts an authorization code exchange; result is
// OAuthResultSuccess or OAuthResultFailure.
func (m *Metrics) RecordOAuthAuth(ctx context.Context, result string) {
	if m.ready() {
		m.oauthExchanges.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
	}
}

// RecordOAuthTokenRefresh counts a refresh attempt. OAuthResultExpired means
// the refresh token itself was rejected.
func (m *Metrics) RecordOAuthTokenRefresh(ctx context.Context, result string) {
	if m.ready() {
		m.oauthRefreshes.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
	}
}

// RecordToolInvocation records one MCP tool call.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if !m.ready() {
		return
	}
	opt := metric.WithAttributes(
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	)
	m.toolInvocations.Add(ctx, 1, opt)
	m.toolDuration.Record(ctx, duration.Seconds(), opt)
}
