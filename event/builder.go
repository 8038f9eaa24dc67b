package event

import (
	"github.com/zenterm/zenbus/logging"
	"github.com/zenterm/zenbus/tracing"
)

// Builder assembles a Bus. The zero value is not usable; call NewBuilder.
type Builder struct {
	catchPanics bool
	tracing     bool
	sink        MetricsSink
	logger      logging.Logger
	tracer      *tracing.Tracer
}

// NewBuilder returns a builder with panic catching on, tracing off and a
// no-op metrics sink.
func NewBuilder() *Builder {
	return &Builder{
		catchPanics: true,
		sink:        NoopMetricsSink{},
	}
}

// CatchPanics sets whether handler panics are isolated and reported as
// Panic results (true) or propagate out of the emit call (false).
func (b *Builder) CatchPanics(enabled bool) *Builder {
	b.catchPanics = enabled
	return b
}

// Tracing enables a span per emit and per handler. It only has an effect in
// binaries built with the eventtrace tag.
func (b *Builder) Tracing(enabled bool) *Builder {
	b.tracing = enabled
	return b
}

// MetricsSink sets the observer notified during dispatch. nil restores the
// no-op sink.
func (b *Builder) MetricsSink(sink MetricsSink) *Builder {
	if sink == nil {
		sink = NoopMetricsSink{}
	}
	b.sink = sink
	return b
}

// Logger sets the logger used for panics, deprecation warnings and
// subscription changes. Defaults to the global logger named "event".
func (b *Builder) Logger(logger logging.Logger) *Builder {
	b.logger = logger
	return b
}

// Tracer sets the tracer used when tracing is enabled.
func (b *Builder) Tracer(tracer *tracing.Tracer) *Builder {
	b.tracer = tracer
	return b
}

// Build returns a new Bus. The builder may be reused; later changes do not
// affect buses already built.
func (b *Builder) Build() *Bus {
	logger := b.logger
	if logger == nil {
		logger = logging.Named("event")
	}

	tracer := b.tracer
	if tracingCompiled && b.tracing && tracer == nil {
		tracer = tracing.NewTracer(tracing.DefaultTracerConfig("zenbus"))
	}

	return &Bus{
		registry: newRegistry(),
		logger:   logger,
		dispatcher: dispatcher{
			catchPanics: b.catchPanics,
			tracing:     b.tracing,
			sink:        b.sink,
			observed:    !isNoop(b.sink),
			tracer:      tracer,
			logger:      logger,
		},
	}
}
