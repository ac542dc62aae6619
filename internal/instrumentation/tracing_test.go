package instrumentation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans installs a recording tracer provider for the duration of the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]string {
	attrs := make(map[attribute.Key]string)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	return attrs
}

func TestTargetAttributes(t *testing.T) {
	attrs := TargetAttributes(ServiceTasks, OperationComplete, "p1", "t1")
	require.Len(t, attrs, 4)
	assert.Equal(t, attribute.String(SpanAttrService, ServiceTasks), attrs[0])
	assert.Equal(t, attribute.String(SpanAttrTask, "t1"), attrs[3])

	assert.Empty(t, TargetAttributes("", "", "", ""))
	assert.Len(t, TargetAttributes(ServiceProjects, OperationList, "", ""), 2)
}

func TestStartTickTickAPISpan(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartTickTickAPISpan(context.Background(), ServiceTasks, OperationComplete,
		attribute.String("http.route", "/project/{id}/task/{id}/complete"))
	SetSpanError(span, errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	got := ended[0]
	assert.Equal(t, "ticktick.tasks.complete", got.Name())
	assert.Equal(t, trace.SpanKindClient, got.SpanKind())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "boom", got.Status().Description)
	require.Len(t, got.Events(), 1, "the error is recorded as an event")

	attrs := spanAttrs(got)
	assert.Equal(t, ServiceTasks, attrs[SpanAttrService])
	assert.Equal(t, OperationComplete, attrs[SpanAttrOperation])
	assert.Equal(t, "/project/{id}/task/{id}/complete", attrs["http.route"])
}

func TestStartToolSpan(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartToolSpan(context.Background(), "get_project",
		TargetAttributes(ServiceProjects, OperationGet, "p1", "")...)
	SetSpanSuccess(span)
	AddSpanEvent(span, "cache_miss", attribute.Int("attempt", 1))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	got := ended[0]
	assert.Equal(t, "tool.get_project", got.Name())
	assert.Equal(t, trace.SpanKindServer, got.SpanKind())
	assert.Equal(t, codes.Ok, got.Status().Code)
	require.Len(t, got.Events(), 1)
	assert.Equal(t, "cache_miss", got.Events()[0].Name)

	attrs := spanAttrs(got)
	assert.Equal(t, "get_project", attrs[SpanAttrTool])
	assert.Equal(t, "p1", attrs[SpanAttrProject])
	assert.NotContains(t, attrs, attribute.Key(SpanAttrTask))
}

func TestSetSpanError_NilIsIgnored(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartToolSpan(context.Background(), "get_projects")
	SetSpanError(span, nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
	assert.Empty(t, ended[0].Events())
}
