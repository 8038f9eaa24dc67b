package metrics

import (
	"github.com/zenterm/zenbus/concurrency"
	"github.com/zenterm/zenbus/event"
	"github.com/zenterm/zenbus/logging"
)

// AsyncSink forwards calls to another sink on background workers so a slow
// sink never delays an emit. Calls arriving while the buffer is full are
// dropped and counted. Ordering across workers is not preserved; use one
// worker when the downstream sink depends on order.
type AsyncSink struct {
	next  event.MetricsSink
	queue *concurrency.TaskQueue
}

// NewAsyncSink starts workers goroutines feeding next.
func NewAsyncSink(next event.MetricsSink, bufferSize, workers int, logger logging.Logger) *AsyncSink {
	q := concurrency.NewTaskQueue(bufferSize, logger)
	q.Start(workers)
	return &AsyncSink{next: next, queue: q}
}

func (s *AsyncSink) OnEmit(key string, handlerCount int) {
	s.queue.TrySubmit(func() { s.next.OnEmit(key, handlerCount) })
}

func (s *AsyncSink) OnHandlerResult(key, subscriptionID string, result event.HandlerResult) {
	s.queue.TrySubmit(func() { s.next.OnHandlerResult(key, subscriptionID, result) })
}

func (s *AsyncSink) OnPanic(key, subscriptionID, message string) {
	s.queue.TrySubmit(func() { s.next.OnPanic(key, subscriptionID, message) })
}

// Dropped returns how many calls were discarded because the buffer was full.
func (s *AsyncSink) Dropped() uint64 {
	return s.queue.Dropped()
}

// Close drains queued calls, then closes next if it has a Close method.
func (s *AsyncSink) Close() error {
	s.queue.Stop()
	if c, ok := s.next.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

var _ event.MetricsSink = (*AsyncSink)(nil)
