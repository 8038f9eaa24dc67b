//go:build eventtrace

package event

import (
	"context"

	"github.com/zenterm/zenbus/tracing"
)

const tracingCompiled = true

type traceSpan struct {
	ctx  context.Context
	span *tracing.Span
}

func (d *dispatcher) startEmitSpan(key string, payload Payload, handlers int) traceSpan {
	ctx, span := d.tracer.Start(context.Background(), "event.emit", map[string]interface{}{
		"event.key":      key,
		"event.payload":  payload.TypeName(),
		"event.handlers": handlers,
	})
	return traceSpan{ctx: ctx, span: span}
}

func (d *dispatcher) startHandlerSpan(parent traceSpan, e *entry) traceSpan {
	ctx := parent.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := d.tracer.Start(ctx, "event.handler", map[string]interface{}{
		"subscription.id":      e.id,
		"subscription.pattern": e.pattern.String(),
	})
	return traceSpan{ctx: ctx, span: span}
}

func (d *dispatcher) endHandlerSpan(s traceSpan, result HandlerResult) {
	d.tracer.SetAttributes(s.span, map[string]interface{}{"handler.outcome": result.Kind.String()})
	if !result.IsSuccess() {
		d.tracer.SetStatus(s.span, tracing.StatusCodeError, result.Message)
	}
	d.tracer.End(s.span, nil)
}

func (d *dispatcher) endEmitSpan(s traceSpan, report EmitReport) {
	d.tracer.SetAttributes(s.span, map[string]interface{}{
		"event.successes": report.Successes,
		"event.errors":    report.Errors,
		"event.panics":    report.Panics,
	})
	if !report.IsAllOK() {
		d.tracer.SetStatus(s.span, tracing.StatusCodeError, report.String())
	}
	d.tracer.End(s.span, nil)
}
