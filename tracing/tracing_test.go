package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zenterm/zenbus/logging"
)

func newTestTracer(exporter SpanExporter) *Tracer {
	return NewTracer(TracerConfig{
		ServiceName:  "test",
		SamplingRate: 1,
		Processor:    NewSimpleSpanProcessor(exporter),
	})
}

func TestTracer_ChildSpanJoinsParentTrace(t *testing.T) {
	exporter := NewInMemoryExporter()
	tracer := newTestTracer(exporter)

	ctx, parent := tracer.Start(context.Background(), "event.emit", map[string]interface{}{"event.key": "user.login"})
	_, child := tracer.Start(ctx, "event.handler", nil)

	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.NotEqual(t, parent.SpanID, child.SpanID)
	assert.Equal(t, parent.TraceID, GetTraceID(ctx))
	assert.Equal(t, parent.SpanID, GetSpanID(ctx))

	tracer.End(child, nil)
	tracer.End(parent, nil)

	spans := exporter.Spans()
	require.Len(t, spans, 2)
	assert.Equal(t, "event.handler", spans[0].Name)
	assert.Equal(t, StatusCodeOK, spans[1].Status.Code)

	v, ok := spans[1].Attribute("event.key")
	require.True(t, ok)
	assert.Equal(t, "user.login", v)
}

func TestTracer_EndWithError(t *testing.T) {
	exporter := NewInMemoryExporter()
	tracer := newTestTracer(exporter)

	_, span := tracer.Start(context.Background(), "event.handler", nil)
	tracer.End(span, errors.New("handler failed"))

	require.Len(t, exporter.Spans(), 1)
	assert.Equal(t, StatusCodeError, span.Status.Code)
	assert.Equal(t, "handler failed", span.Status.Message)
	assert.GreaterOrEqual(t, span.Duration(), time.Duration(0))
}

func TestTracer_SetStatusIsKept(t *testing.T) {
	tracer := newTestTracer(NewInMemoryExporter())

	_, span := tracer.Start(context.Background(), "event.handler", nil)
	tracer.SetStatus(span, StatusCodeError, "panic")
	tracer.End(span, nil)

	assert.Equal(t, StatusCodeError, span.Status.Code)
}

func TestTracer_UnsampledSpansAreDropped(t *testing.T) {
	exporter := NewInMemoryExporter()
	tracer := NewTracer(TracerConfig{SamplingRate: 0, Processor: NewSimpleSpanProcessor(exporter)})

	ctx, parent := tracer.Start(context.Background(), "event.emit", nil)
	_, child := tracer.Start(ctx, "event.handler", nil)
	tracer.End(child, nil)
	tracer.End(parent, nil)

	assert.Empty(t, exporter.Spans())
}

func TestTracer_NilSpanIsIgnored(t *testing.T) {
	tracer := newTestTracer(NewInMemoryExporter())
	assert.NotPanics(t, func() {
		tracer.End(nil, nil)
		tracer.AddEvent(nil, "x", nil)
		tracer.SetAttributes(nil, nil)
		tracer.SetStatus(nil, StatusCodeOK, "")
	})
}

func TestBatchSpanProcessor(t *testing.T) {
	exporter := NewInMemoryExporter()
	processor := NewBatchSpanProcessor(exporter, 2, 0)
	tracer := NewTracer(TracerConfig{SamplingRate: 1, Processor: processor})

	for i := 0; i < 3; i++ {
		_, span := tracer.Start(context.Background(), "event.emit", nil)
		tracer.End(span, nil)
	}
	assert.Len(t, exporter.Spans(), 2)

	require.NoError(t, tracer.Shutdown(context.Background()))
	assert.Len(t, exporter.Spans(), 3)
}

func TestLogExporter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := newTestTracer(NewLogExporter(logging.FromZap(zap.New(core))))

	_, span := tracer.Start(context.Background(), "event.emit", map[string]interface{}{"handlers": 2})
	tracer.End(span, nil)

	entries := logs.FilterMessage("event.emit").All()
	require.Len(t, entries, 1)
	assert.Equal(t, span.TraceID, entries[0].ContextMap()["trace_id"])
}

func TestTraceIDRatioBased(t *testing.T) {
	assert.True(t, NewTraceIDRatioBased(1).ShouldSample("abc"))
	assert.False(t, NewTraceIDRatioBased(0).ShouldSample("abc"))

	s := NewTraceIDRatioBased(0.5)
	assert.Equal(t, s.ShouldSample("stable-id"), s.ShouldSample("stable-id"))
}
