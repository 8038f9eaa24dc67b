package tracing

import (
	"context"
	"sync"
	"time"
)

// SpanProcessor receives finished spans.
type SpanProcessor interface {
	OnEnd(span *Span)
	Shutdown(ctx context.Context) error
}

// SimpleSpanProcessor exports every span synchronously.
type SimpleSpanProcessor struct {
	exporter SpanExporter
}

func NewSimpleSpanProcessor(exporter SpanExporter) *SimpleSpanProcessor {
	return &SimpleSpanProcessor{exporter: exporter}
}

func (s *SimpleSpanProcessor) OnEnd(span *Span) {
	if s.exporter != nil {
		_ = s.exporter.Export([]*Span{span})
	}
}

func (s *SimpleSpanProcessor) Shutdown(ctx context.Context) error {
	if s.exporter != nil {
		return s.exporter.Shutdown(ctx)
	}
	return nil
}

// BatchSpanProcessor buffers spans and exports them when the batch fills
// or the flush interval elapses.
type BatchSpanProcessor struct {
	exporter  SpanExporter
	batchSize int
	interval  time.Duration

	mu     sync.Mutex
	batch  []*Span
	timer  *time.Timer
	closed bool
}

func NewBatchSpanProcessor(exporter SpanExporter, batchSize int, interval time.Duration) *BatchSpanProcessor {
	if batchSize <= 0 {
		batchSize = 64
	}
	b := &BatchSpanProcessor{
		exporter:  exporter,
		batchSize: batchSize,
		interval:  interval,
		batch:     make([]*Span, 0, batchSize),
	}
	if interval > 0 {
		b.timer = time.AfterFunc(interval, b.tick)
	}
	return b
}

func (b *BatchSpanProcessor) tick() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.flushLocked()
	b.timer.Reset(b.interval)
}

func (b *BatchSpanProcessor) OnEnd(span *Span) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.batch = append(b.batch, span)
	if len(b.batch) >= b.batchSize {
		b.flushLocked()
	}
}

// Flush exports whatever is buffered.
func (b *BatchSpanProcessor) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
}

func (b *BatchSpanProcessor) flushLocked() {
	if len(b.batch) == 0 {
		return
	}
	out := make([]*Span, len(b.batch))
	copy(out, b.batch)
	b.batch = b.batch[:0]
	_ = b.exporter.Export(out)
}

func (b *BatchSpanProcessor) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	b.flushLocked()
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()
	return b.exporter.Shutdown(ctx)
}
