package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testProjectID = "6226ff9877acee87727f6bca"
	testTaskID    = "63b7bebb91c0a5474805fcd4"
	testTaskTitle = "Renew passport"
)

func attrsByKey(attrs []slog.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value.String()
	}
	return m
}

func TestToolInvocation_Complete(t *testing.T) {
	ti := NewToolInvocation("get_project_tasks")
	assert.False(t, ti.StartTime.IsZero())

	ti.Complete(true, nil)
	assert.True(t, ti.Success)
	assert.GreaterOrEqual(t, ti.Duration.Nanoseconds(), int64(0))
	assert.Empty(t, ti.Error)
	assert.Equal(t, StatusSuccess, ti.Status())

	failed := NewToolInvocation("create_task").Complete(false, errors.New("permission denied"))
	assert.Equal(t, "permission denied", failed.Error)
	assert.Equal(t, StatusError, failed.Status())

	// An error result without a Go error is still a failure.
	assert.Equal(t, StatusError, NewToolInvocation("get_task").Complete(false, nil).Status())
}

func TestToolInvocation_Attrs(t *testing.T) {
	ti := NewToolInvocation("complete_task").
		WithTarget(testProjectID, testTaskID).
		WithTaskTitle(testTaskTitle).
		WithService(ServiceTasks, OperationComplete).
		Complete(true, nil)
	ti.TraceID = "abc123"

	attrs := attrsByKey(ti.Attrs(false))
	assert.Equal(t, "complete_task", attrs["tool"])
	assert.Equal(t, testProjectID, attrs["project_id"])
	assert.Equal(t, testTaskID, attrs["task_id"])
	assert.Equal(t, ServiceTasks, attrs["service"])
	assert.Equal(t, OperationComplete, attrs["operation"])
	assert.Equal(t, "abc123", attrs["trace_id"])
	assert.NotContains(t, attrs, "task_title")

	withTitle := attrsByKey(ti.Attrs(true))
	assert.Equal(t, testTaskTitle, withTitle["task_title"])
}

func TestToolInvocation_Attrs_MinimalFields(t *testing.T) {
	attrs := attrsByKey(NewToolInvocation("test").Complete(true, nil).Attrs(true))

	assert.Len(t, attrs, 3)
	for _, key := range []string{"project_id", "task_id", "service", "operation", "trace_id", "span_id", "error", "task_title"} {
		assert.NotContains(t, attrs, key)
	}
}

func TestToolInvocation_WithSpanContext_NoSpan(t *testing.T) {
	ti := NewToolInvocation("test").WithSpanContext(context.Background())
	assert.Empty(t, ti.TraceID)
	assert.Empty(t, ti.SpanID)
}

func TestToolInvocation_WithSpanContext(t *testing.T) {
	recordSpans(t)
	ctx, span := StartToolSpan(context.Background(), "get_task")
	defer span.End()

	ti := NewToolInvocation("get_task").WithSpanContext(ctx)
	assert.Equal(t, span.SpanContext().TraceID().String(), ti.TraceID)
	assert.Equal(t, span.SpanContext().SpanID().String(), ti.SpanID)
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	tests := []struct {
		name       string
		includePII bool
		err        error
		wantMsg    string
		wantLevel  string
		wantTitle  bool
	}{
		{name: "success", wantMsg: "tool_executed", wantLevel: "INFO"},
		{name: "failure", err: errors.New("boom"), wantMsg: "tool_failed", wantLevel: "WARN"},
		{name: "with titles", includePII: true, wantMsg: "tool_executed", wantLevel: "INFO", wantTitle: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)),
				AuditLoggingConfig{Enabled: true, IncludePII: tt.includePII})

			ti := NewToolInvocation("create_task").
				WithTarget(testProjectID, testTaskID).
				WithTaskTitle(testTaskTitle).
				Complete(tt.err == nil, tt.err)
			al.LogToolInvocation(ti)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.wantMsg, entry["msg"])
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "audit", entry["component"])
			_, hasTitle := entry["task_title"]
			assert.Equal(t, tt.wantTitle, hasTitle)
		})
	}
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{Enabled: false})

	al.LogToolInvocation(NewToolInvocation("get_projects").Complete(true, nil))
	assert.Zero(t, buf.Len())

	var nilLogger *AuditLogger
	assert.NotPanics(t, func() { nilLogger.LogToolInvocation(NewToolInvocation("get_projects")) })
}

func TestNewAuditLogger_NilLogger(t *testing.T) {
	al := NewAuditLogger(nil, AuditLoggingConfig{Enabled: true})
	assert.NotNil(t, al.logger)
}
