package tracing

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/zenterm/zenbus/logging"
)

// SpanExporter ships finished spans somewhere.
type SpanExporter interface {
	Export(spans []*Span) error
	Shutdown(ctx context.Context) error
}

// LogExporter writes one debug entry per span.
type LogExporter struct {
	logger logging.Logger
}

func NewLogExporter(logger logging.Logger) *LogExporter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &LogExporter{logger: logger}
}

func (e *LogExporter) Export(spans []*Span) error {
	for _, span := range spans {
		fields := []zap.Field{
			zap.String("trace_id", span.TraceID),
			zap.String("span_id", span.SpanID),
			zap.Duration("duration", span.Duration()),
			zap.Stringer("status", span.Status.Code),
		}
		if span.ParentID != "" {
			fields = append(fields, zap.String("parent_id", span.ParentID))
		}
		span.mu.Lock()
		if len(span.Attributes) > 0 {
			fields = append(fields, zap.Any("attributes", span.Attributes))
		}
		span.mu.Unlock()
		if span.Status.Message != "" {
			fields = append(fields, zap.String("status_message", span.Status.Message))
		}
		e.logger.Debug(span.Name, fields...)
	}
	return nil
}

func (e *LogExporter) Shutdown(ctx context.Context) error {
	return e.logger.Sync()
}

// InMemoryExporter keeps exported spans for inspection.
type InMemoryExporter struct {
	mu    sync.Mutex
	spans []*Span
}

func NewInMemoryExporter() *InMemoryExporter {
	return &InMemoryExporter{}
}

func (e *InMemoryExporter) Export(spans []*Span) error {
	e.mu.Lock()
	e.spans = append(e.spans, spans...)
	e.mu.Unlock()
	return nil
}

func (e *InMemoryExporter) Shutdown(ctx context.Context) error {
	return nil
}

// Spans returns a copy of everything exported so far.
func (e *InMemoryExporter) Spans() []*Span {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Span, len(e.spans))
	copy(out, e.spans)
	return out
}

// Reset discards exported spans.
func (e *InMemoryExporter) Reset() {
	e.mu.Lock()
	e.spans = nil
	e.mu.Unlock()
}
