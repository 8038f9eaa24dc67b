package event

import (
	"go.uber.org/zap"

	"github.com/zenterm/zenbus/errors"
	"github.com/zenterm/zenbus/logging"
	"github.com/zenterm/zenbus/tracing"
)

// dispatcher runs a snapshot of handlers for one key. Its fields are fixed
// when the bus is built.
type dispatcher struct {
	catchPanics bool
	tracing     bool
	sink        MetricsSink
	observed    bool
	tracer      *tracing.Tracer
	logger      logging.Logger
}

// dispatch invokes handlers sequentially on the calling goroutine.
func (d *dispatcher) dispatch(key string, payload Payload, handlers []*entry) EmitReport {
	report := NewEmitReport(key)

	if d.observed {
		d.sink.OnEmit(key, len(handlers))
	}

	var emitSpan traceSpan
	if tracingCompiled && d.tracing {
		emitSpan = d.startEmitSpan(key, payload, len(handlers))
	}

	for _, e := range handlers {
		var handlerSpan traceSpan
		if tracingCompiled && d.tracing {
			handlerSpan = d.startHandlerSpan(emitSpan, e)
		}

		result := d.invoke(key, e, payload)

		if tracingCompiled && d.tracing {
			d.endHandlerSpan(handlerSpan, result)
		}
		if d.observed {
			d.sink.OnHandlerResult(key, e.id, result)
			if result.IsPanic() {
				d.sink.OnPanic(key, e.id, result.Message)
			}
		}
		report.Add(result)
	}

	if tracingCompiled && d.tracing {
		d.endEmitSpan(emitSpan, report)
	}
	return report
}

// goexitMessage is reported for a handler that called runtime.Goexit.
const goexitMessage = "handler called runtime.Goexit"

// invoke runs one handler. With panic catching disabled a panic unwinds
// straight through dispatch to the emitter.
//
// runtime.Goexit cannot be stopped: recover returns nil and the emitting
// goroutine keeps unwinding. It is logged and reported to the sink as a
// panic first; the remaining handlers do not run and no report is returned.
func (d *dispatcher) invoke(key string, e *entry, payload Payload) (result HandlerResult) {
	if !d.catchPanics {
		return e.call(payload)
	}

	normalReturn := false
	defer func() {
		if normalReturn {
			return
		}
		if r := recover(); r != nil {
			appErr := errors.FromPanic(r)
			d.logger.Error("event handler panicked",
				logging.EventKey(key),
				logging.Pattern(e.pattern.String()),
				logging.SubscriptionID(e.id),
				zap.String("panic", appErr.Message),
				zap.Strings("stack", appErr.Stack),
			)
			result = Panicked(appErr.Message)
			return
		}
		d.logger.Error("event handler exited goroutine",
			logging.EventKey(key),
			logging.Pattern(e.pattern.String()),
			logging.SubscriptionID(e.id),
		)
		if d.observed {
			d.sink.OnHandlerResult(key, e.id, Panicked(goexitMessage))
			d.sink.OnPanic(key, e.id, goexitMessage)
		}
	}()
	result = e.call(payload)
	normalReturn = true
	return result
}
