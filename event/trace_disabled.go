//go:build !eventtrace

package event

// tracingCompiled is false without the eventtrace build tag; every tracing
// branch in the dispatcher is guarded by it and compiled out.
const tracingCompiled = false

type traceSpan struct{}

func (d *dispatcher) startEmitSpan(string, Payload, int) traceSpan { return traceSpan{} }

func (d *dispatcher) startHandlerSpan(traceSpan, *entry) traceSpan { return traceSpan{} }

func (d *dispatcher) endHandlerSpan(traceSpan, HandlerResult) {}

func (d *dispatcher) endEmitSpan(traceSpan, EmitReport) {}
