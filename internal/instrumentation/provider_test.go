package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false, MetricsExporter: "ignored"})
	require.NoError(t, err)

	assert.False(t, provider.Enabled())
	assert.False(t, provider.ServesPrometheus())
	require.NotNil(t, provider.Metrics())

	// A disabled recorder accepts calls without panicking.
	provider.Metrics().RecordOAuthAuth(context.Background(), OAuthResultSuccess)
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_Exporters(t *testing.T) {
	tests := []struct {
		name             string
		metricsExporter  string
		tracingExporter  string
		servesPrometheus bool
	}{
		{"prometheus without tracing", ExporterPrometheus, ExporterNone, true},
		{"stdout metrics and traces", ExporterStdout, ExporterStdout, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			provider, err := NewProvider(ctx, Config{
				ServiceName:       "test-service",
				ServiceVersion:    "1.0.0",
				Enabled:           true,
				MetricsExporter:   tt.metricsExporter,
				TracingExporter:   tt.tracingExporter,
				TraceSamplingRate: 1,
			})
			require.NoError(t, err)
			defer func() { _ = provider.Shutdown(ctx) }()

			assert.True(t, provider.Enabled())
			assert.Equal(t, tt.servesPrometheus, provider.ServesPrometheus())
			assert.NotNil(t, provider.Metrics())
		})
	}
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		errContains string
	}{
		{
			name:        "metrics exporter",
			config:      Config{Enabled: true, MetricsExporter: "invalid", TracingExporter: ExporterNone},
			errContains: "invalid metrics exporter",
		},
		{
			name:        "tracing exporter",
			config:      Config{Enabled: true, MetricsExporter: ExporterPrometheus, TracingExporter: "invalid"},
			errContains: "invalid tracing exporter",
		},
		{
			name:        "otlp tracing without endpoint",
			config:      Config{Enabled: true, MetricsExporter: ExporterPrometheus, TracingExporter: ExporterOTLP},
			errContains: "OTLP endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(context.Background(), tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
