package instrumentation

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds the configuration for OpenTelemetry instrumentation.
//
// All values come from the standard OTEL_* variables plus a few
// ticktick-mcp specific ones, see DefaultConfig.
type Config struct {
	// ServiceName is the name of the service (default: ticktick-mcp)
	ServiceName string

	// ServiceVersion is set by the CLI from the build version
	ServiceVersion string

	// ServiceInstanceID identifies this process (default: hostname)
	ServiceInstanceID string

	// Enabled turns metrics and tracing on (default: true)
	Enabled bool

	// MetricsExporter is "prometheus", "otlp" or "stdout" (default: "prometheus")
	MetricsExporter string

	// TracingExporter is "otlp", "stdout" or "none" (default: "none")
	TracingExporter string

	// OTLPEndpoint is the collector host:port, without scheme
	OTLPEndpoint string

	// OTLPInsecure sends OTLP over plain HTTP. Traces carry project and task
	// IDs, so only use this against a local collector.
	OTLPInsecure bool

	// TraceSamplingRate is the parent-based ratio, 0.0 to 1.0 (default: 1.0)
	TraceSamplingRate float64

	// DetailedLabels adds the normalized API route to API operation metrics.
	DetailedLabels bool

	// AuditLogging configures audit logging behavior.
	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig holds configuration for audit logging.
type AuditLoggingConfig struct {
	// Enabled determines if audit logging is active (default: true)
	// Audit logs name the projects and tasks a tool touched.
	Enabled bool

	// IncludePII controls whether task titles are included in audit logs.
	// When false (default), only project and task IDs are logged.
	IncludePII bool
}

// Environment variables read by DefaultConfig.
const (
	EnvServiceName       = "OTEL_SERVICE_NAME"
	EnvServiceInstanceID = "OTEL_SERVICE_INSTANCE_ID"
	EnvEnabled           = "INSTRUMENTATION_ENABLED"
	EnvMetricsExporter   = "METRICS_EXPORTER"
	EnvTracingExporter   = "TRACING_EXPORTER"
	EnvOTLPEndpoint      = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvOTLPInsecure      = "OTEL_EXPORTER_OTLP_INSECURE"
	EnvTraceSamplingRate = "OTEL_TRACES_SAMPLER_ARG"
	EnvDetailedLabels    = "METRICS_DETAILED_LABELS"
	EnvAuditEnabled      = "AUDIT_LOGGING_ENABLED"
	EnvAuditIncludePII   = "AUDIT_LOGGING_INCLUDE_PII"
)

// DefaultConfig returns the configuration described by the environment.
func DefaultConfig() Config {
	return configFrom(environment())
}

// environment returns a viper instance resolving the instrumentation
// variables from the process environment with their defaults.
func environment() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	hostname, _ := os.Hostname()
	for key, value := range map[string]any{
		EnvServiceName:       "ticktick-mcp",
		EnvServiceInstanceID: hostname,
		EnvEnabled:           true,
		EnvMetricsExporter:   ExporterPrometheus,
		EnvTracingExporter:   ExporterNone,
		EnvOTLPEndpoint:      "",
		EnvOTLPInsecure:      false,
		EnvTraceSamplingRate: 1.0,
		EnvDetailedLabels:    false,
		EnvAuditEnabled:      true,
		EnvAuditIncludePII:   false,
	} {
		v.SetDefault(key, value)
	}
	return v
}

func configFrom(v *viper.Viper) Config {
	return Config{
		ServiceName:       v.GetString(EnvServiceName),
		ServiceVersion:    "unknown",
		ServiceInstanceID: v.GetString(EnvServiceInstanceID),
		Enabled:           v.GetBool(EnvEnabled),
		MetricsExporter:   v.GetString(EnvMetricsExporter),
		TracingExporter:   v.GetString(EnvTracingExporter),
		OTLPEndpoint:      v.GetString(EnvOTLPEndpoint),
		OTLPInsecure:      v.GetBool(EnvOTLPInsecure),
		TraceSamplingRate: v.GetFloat64(EnvTraceSamplingRate),
		DetailedLabels:    v.GetBool(EnvDetailedLabels),
		AuditLogging: AuditLoggingConfig{
			Enabled:    v.GetBool(EnvAuditEnabled),
			IncludePII: v.GetBool(EnvAuditIncludePII),
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	switch c.MetricsExporter {
	case ExporterPrometheus, ExporterOTLP, ExporterStdout:
	default:
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	switch c.TracingExporter {
	case ExporterOTLP, ExporterStdout, ExporterNone:
	default:
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if c.OTLPEndpoint == "" && (c.MetricsExporter == ExporterOTLP || c.TracingExporter == ExporterOTLP) {
		return fmt.Errorf("OTLP endpoint is required for the otlp exporter; set %s", EnvOTLPEndpoint)
	}
	return nil
}

// Constants for metric label values.
const (
	// Status values
	StatusSuccess = "success"
	StatusError   = "error"
	StatusUnknown = "unknown"

	// OAuth result values
	OAuthResultSuccess = "success"
	OAuthResultFailure = "failure"
	OAuthResultExpired = "expired"

	// TickTick API areas
	ServiceProjects = "projects"
	ServiceTasks    = "tasks"

	// Exporter types
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)
