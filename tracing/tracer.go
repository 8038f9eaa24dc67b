package tracing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zenterm/zenbus/logging"
)

// Tracer creates spans and hands finished ones to its processor.
type Tracer struct {
	name      string
	processor SpanProcessor
	sampler   Sampler
}

// TracerConfig represents the configuration for a tracer
type TracerConfig struct {
	ServiceName  string        `mapstructure:"service-name"`
	SamplingRate float64       `mapstructure:"sampling-rate"`
	Processor    SpanProcessor `mapstructure:"-"`
}

// DefaultTracerConfig samples everything and logs spans through the global logger.
func DefaultTracerConfig(serviceName string) TracerConfig {
	return TracerConfig{
		ServiceName:  serviceName,
		SamplingRate: 1.0,
		Processor:    NewSimpleSpanProcessor(NewLogExporter(logging.Named("trace"))),
	}
}

// NewTracer creates a new tracer
func NewTracer(config TracerConfig) *Tracer {
	if config.Processor == nil {
		config.Processor = NewSimpleSpanProcessor(NewLogExporter(logging.Named("trace")))
	}
	return &Tracer{
		name:      config.ServiceName,
		processor: config.Processor,
		sampler:   NewTraceIDRatioBased(config.SamplingRate),
	}
}

// Name returns the service name the tracer was created with.
func (t *Tracer) Name() string {
	return t.name
}

// Start opens a span. A span already present in ctx becomes the parent and
// the new span joins its trace and sampling decision.
func (t *Tracer) Start(ctx context.Context, name string, attrs map[string]interface{}) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	span := &Span{
		SpanID:     newID(),
		Name:       name,
		StartTime:  time.Now(),
		Attributes: make(map[string]interface{}, len(attrs)),
	}
	if parent := SpanFromContext(ctx); parent != nil {
		span.TraceID = parent.TraceID
		span.ParentID = parent.SpanID
		span.Sampled = parent.Sampled
	} else {
		span.TraceID = newID() + newID()
		span.Sampled = t.sampler.ShouldSample(span.TraceID)
	}
	span.setAttributes(attrs)

	return ContextWithSpan(ctx, span), span
}

// End closes span; a non-nil err marks it failed. Unsampled spans are dropped.
func (t *Tracer) End(span *Span, err error) {
	if span == nil {
		return
	}

	span.mu.Lock()
	span.EndTime = time.Now()
	if err != nil {
		span.Status = SpanStatus{Code: StatusCodeError, Message: err.Error()}
		span.Attributes["error"] = true
	} else if span.Status.Code == StatusCodeUnset {
		span.Status.Code = StatusCodeOK
	}
	span.mu.Unlock()

	if span.Sampled {
		t.processor.OnEnd(span)
	}
}

// AddEvent adds an event to a span
func (t *Tracer) AddEvent(span *Span, name string, attrs map[string]interface{}) {
	if span == nil {
		return
	}
	span.mu.Lock()
	span.Events = append(span.Events, SpanEvent{Time: time.Now(), Name: name, Attributes: attrs})
	span.mu.Unlock()
}

// SetAttributes sets attributes on a span
func (t *Tracer) SetAttributes(span *Span, attrs map[string]interface{}) {
	if span == nil {
		return
	}
	span.setAttributes(attrs)
}

// SetStatus sets the status of a span
func (t *Tracer) SetStatus(span *Span, code SpanStatusCode, message string) {
	if span == nil {
		return
	}
	span.mu.Lock()
	span.Status = SpanStatus{Code: code, Message: message}
	span.mu.Unlock()
}

// Shutdown flushes and stops the processor.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.processor != nil {
		return t.processor.Shutdown(ctx)
	}
	return nil
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
