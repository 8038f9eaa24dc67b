package tracing

import (
	"context"
	"sync"
	"time"
)

// Span represents a single timed operation within a trace.
type Span struct {
	TraceID    string
	SpanID     string
	ParentID   string
	Name       string
	StartTime  time.Time
	EndTime    time.Time
	Attributes map[string]interface{}
	Events     []SpanEvent
	Status     SpanStatus
	Sampled    bool

	mu sync.Mutex
}

// SpanEvent is a timestamped annotation on a span.
type SpanEvent struct {
	Time       time.Time
	Name       string
	Attributes map[string]interface{}
}

// SpanStatus represents the status of a span
type SpanStatus struct {
	Code    SpanStatusCode
	Message string
}

// SpanStatusCode represents the status code of a span
type SpanStatusCode int

const (
	StatusCodeUnset SpanStatusCode = 0
	StatusCodeOK    SpanStatusCode = 1
	StatusCodeError SpanStatusCode = 2
)

func (c SpanStatusCode) String() string {
	switch c {
	case StatusCodeOK:
		return "ok"
	case StatusCodeError:
		return "error"
	default:
		return "unset"
	}
}

// Duration returns EndTime - StartTime, or zero for a span still open.
func (s *Span) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// Attribute returns a copy-safe read of one attribute.
func (s *Span) Attribute(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.Attributes[key]
	return v, ok
}

func (s *Span) setAttributes(attrs map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range attrs {
		s.Attributes[k] = v
	}
}

type spanKey struct{}

// SpanFromContext returns the span stored in ctx, or nil.
func SpanFromContext(ctx context.Context) *Span {
	if ctx == nil {
		return nil
	}
	span, _ := ctx.Value(spanKey{}).(*Span)
	return span
}

// ContextWithSpan returns ctx carrying span.
func ContextWithSpan(ctx context.Context, span *Span) context.Context {
	return context.WithValue(ctx, spanKey{}, span)
}

// GetTraceID gets the trace ID from context
func GetTraceID(ctx context.Context) string {
	if span := SpanFromContext(ctx); span != nil {
		return span.TraceID
	}
	return ""
}

// GetSpanID gets the span ID from context
func GetSpanID(ctx context.Context) string {
	if span := SpanFromContext(ctx); span != nil {
		return span.SpanID
	}
	return ""
}
