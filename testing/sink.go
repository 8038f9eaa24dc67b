package testing

import (
	"sync"

	"github.com/zenterm/zenbus/event"
)

// SinkCall is one recorded MetricsSink invocation.
type SinkCall struct {
	Method         string // "emit", "result" or "panic"
	Key            string
	HandlerCount   int
	SubscriptionID string
	Result         event.HandlerResult
	Message        string
}

// RecordingSink records every MetricsSink call in order.
type RecordingSink struct {
	mu    sync.Mutex
	calls []SinkCall
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) OnEmit(key string, handlerCount int) {
	s.record(SinkCall{Method: "emit", Key: key, HandlerCount: handlerCount})
}

func (s *RecordingSink) OnHandlerResult(key, subscriptionID string, result event.HandlerResult) {
	s.record(SinkCall{Method: "result", Key: key, SubscriptionID: subscriptionID, Result: result})
}

func (s *RecordingSink) OnPanic(key, subscriptionID, message string) {
	s.record(SinkCall{Method: "panic", Key: key, SubscriptionID: subscriptionID, Message: message})
}

func (s *RecordingSink) record(c SinkCall) {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	s.mu.Unlock()
}

// Calls returns a copy of the recorded calls.
func (s *RecordingSink) Calls() []SinkCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SinkCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// Methods returns just the method names, in call order.
func (s *RecordingSink) Methods() []string {
	calls := s.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Method
	}
	return out
}

// Filter returns the calls made to method.
func (s *RecordingSink) Filter(method string) []SinkCall {
	var out []SinkCall
	for _, c := range s.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (s *RecordingSink) Reset() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

var _ event.MetricsSink = (*RecordingSink)(nil)
