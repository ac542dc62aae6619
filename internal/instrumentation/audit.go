package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ToolInvocation describes one MCP tool call for audit logging.
//
// TaskTitle is user content and is only logged when the audit logger is
// configured with IncludePII.
type ToolInvocation struct {
	Tool string

	ProjectID   string
	TaskID      string
	TaskTitle   string
	ServiceName string // projects or tasks
	Operation   string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation starts timing a call of tool.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithTarget sets the project and task the tool acted on. Either may be empty.
func (ti *ToolInvocation) WithTarget(projectID, taskID string) *ToolInvocation {
	ti.ProjectID = projectID
	ti.TaskID = taskID
	return ti
}

// WithTaskTitle sets the title of the task the tool acted on.
func (ti *ToolInvocation) WithTaskTitle(title string) *ToolInvocation {
	ti.TaskTitle = title
	return ti
}

// WithService sets the TickTick API area and operation.
func (ti *ToolInvocation) WithService(serviceName, operation string) *ToolInvocation {
	ti.ServiceName = serviceName
	ti.Operation = operation
	return ti
}

// WithSpanContext copies the trace and span IDs of the active span, if any.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		ti.TraceID = sc.TraceID().String()
		ti.SpanID = sc.SpanID().String()
	}
	return ti
}

// Complete stops the timer. A tool result flagged as error is a failure
// without a Go error, so success and err are passed separately.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// Status returns "success" or "error".
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// Attrs returns the log attributes of the invocation. Empty fields are
// omitted; the task title is only included with includeTitle.
func (ti *ToolInvocation) Attrs(includeTitle bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	optional := []struct{ key, value string }{
		{"project_id", ti.ProjectID},
		{"task_id", ti.TaskID},
		{"service", ti.ServiceName},
		{"operation", ti.Operation},
		{"trace_id", ti.TraceID},
		{"span_id", ti.SpanID},
		{"error", ti.Error},
	}
	if includeTitle {
		optional = append(optional, struct{ key, value string }{"task_title", ti.TaskTitle})
	}
	for _, f := range optional {
		if f.value != "" {
			attrs = append(attrs, slog.String(f.key, f.value))
		}
	}
	return attrs
}

// AuditLogger writes one structured line per tool invocation.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger returns an audit logger writing to logger, or to the
// default logger when logger is nil.
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger.With("component", "audit"),
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogToolInvocation logs tool_executed at info level or tool_failed at warn level.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}

	level, msg := slog.LevelInfo, "tool_executed"
	if !ti.Success {
		level, msg = slog.LevelWarn, "tool_failed"
	}
	al.logger.LogAttrs(context.Background(), level, msg, ti.Attrs(al.includePII)...)
}
