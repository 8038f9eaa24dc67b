package event

// MetricsSink observes dispatch. All methods are called synchronously on the
// emitting goroutine, so implementations that do I/O must hand the work off.
//
// key is always the emitted event key, not the pattern the subscription was
// registered with.
type MetricsSink interface {
	// OnEmit is called once per emit, before any handler runs, with the
	// number of handlers about to be invoked (possibly zero).
	OnEmit(key string, handlerCount int)
	// OnHandlerResult is called after every handler invocation.
	OnHandlerResult(key, subscriptionID string, result HandlerResult)
	// OnPanic is called after OnHandlerResult when the handler panicked.
	OnPanic(key, subscriptionID, message string)
}

// NoopMetricsSink discards everything.
type NoopMetricsSink struct{}

func (NoopMetricsSink) OnEmit(string, int)                            {}
func (NoopMetricsSink) OnHandlerResult(string, string, HandlerResult) {}
func (NoopMetricsSink) OnPanic(string, string, string)                {}

var _ MetricsSink = NoopMetricsSink{}

func isNoop(sink MetricsSink) bool {
	switch sink.(type) {
	case NoopMetricsSink, *NoopMetricsSink:
		return true
	}
	return false
}
