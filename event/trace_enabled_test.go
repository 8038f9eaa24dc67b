//go:build eventtrace

package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenterm/zenbus/event"
	"github.com/zenterm/zenbus/logging"
	"github.com/zenterm/zenbus/tracing"
)

func TestTracing_SpanPerEmitAndHandler(t *testing.T) {
	exporter := tracing.NewInMemoryExporter()
	tracer := tracing.NewTracer(tracing.TracerConfig{
		SamplingRate: 1,
		Processor:    tracing.NewSimpleSpanProcessor(exporter),
	})
	bus := event.NewBuilder().Tracing(true).Tracer(tracer).Logger(logging.Nop()).Build()

	bus.MustSubscribe("user.*", func(event.Payload) {})
	bus.MustSubscribe("user.login", func(event.Payload) { panic("x") })

	bus.Emit("user.login", nil)

	spans := exporter.Spans()
	require.Len(t, spans, 3)
	assert.Equal(t, "event.handler", spans[0].Name)
	assert.Equal(t, "event.handler", spans[1].Name)
	assert.Equal(t, "event.emit", spans[2].Name)

	assert.Equal(t, spans[2].SpanID, spans[0].ParentID)
	assert.Equal(t, spans[2].TraceID, spans[1].TraceID)
	assert.Equal(t, tracing.StatusCodeOK, spans[0].Status.Code)
	assert.Equal(t, tracing.StatusCodeError, spans[1].Status.Code)
	assert.Equal(t, tracing.StatusCodeError, spans[2].Status.Code)
}

func TestTracing_DisabledOnBusProducesNoSpans(t *testing.T) {
	exporter := tracing.NewInMemoryExporter()
	tracer := tracing.NewTracer(tracing.TracerConfig{SamplingRate: 1, Processor: tracing.NewSimpleSpanProcessor(exporter)})
	bus := event.NewBuilder().Tracer(tracer).Logger(logging.Nop()).Build()

	bus.MustSubscribe("a", func(event.Payload) {})
	bus.Emit("a", nil)

	assert.Empty(t, exporter.Spans())
}
