package metrics

import (
	"go.uber.org/zap"

	"github.com/zenterm/zenbus/errors"
	"github.com/zenterm/zenbus/event"
	"github.com/zenterm/zenbus/logging"
)

// Metric names recorded by CollectorSink.
const (
	MetricEmits           = "event_emits_total"
	MetricHandlersPerEmit = "event_handlers_per_emit"
	MetricHandlerResults  = "event_handler_results_total"
	MetricHandlerPanics   = "event_handler_panics_total"
)

// CollectorSink records bus activity into a Collector.
type CollectorSink struct {
	collector *Collector
}

func NewCollectorSink(collector *Collector) *CollectorSink {
	if collector == nil {
		collector = NewCollector()
	}
	return &CollectorSink{collector: collector}
}

// Collector returns the collector the sink writes to.
func (s *CollectorSink) Collector() *Collector {
	return s.collector
}

func (s *CollectorSink) OnEmit(key string, handlerCount int) {
	labels := map[string]string{"key": key}
	s.collector.IncCounter(MetricEmits, labels)
	s.collector.ObserveHistogram(MetricHandlersPerEmit, float64(handlerCount), labels)
}

func (s *CollectorSink) OnHandlerResult(key, subscriptionID string, result event.HandlerResult) {
	s.collector.IncCounter(MetricHandlerResults, map[string]string{
		"key":    key,
		"result": result.Kind.String(),
	})
}

func (s *CollectorSink) OnPanic(key, subscriptionID, message string) {
	s.collector.IncCounter(MetricHandlerPanics, map[string]string{"key": key})
}

// LogSink writes bus activity to a logger: emits at debug, handler errors
// at warn and panics at error.
type LogSink struct {
	logger logging.Logger
}

func NewLogSink(logger logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Named("event.metrics")
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) OnEmit(key string, handlerCount int) {
	s.logger.Debug("event emitted", logging.EventKey(key), logging.HandlerCount(handlerCount))
}

func (s *LogSink) OnHandlerResult(key, subscriptionID string, result event.HandlerResult) {
	if result.IsError() {
		s.logger.Warn("event handler failed",
			logging.EventKey(key),
			logging.SubscriptionID(subscriptionID),
			zap.String("error", result.Message),
		)
	}
}

func (s *LogSink) OnPanic(key, subscriptionID, message string) {
	s.logger.Error("event handler panic recovered",
		logging.EventKey(key),
		logging.SubscriptionID(subscriptionID),
		zap.String("panic", message),
	)
}

// MultiSink fans every call out to its sinks in order.
type MultiSink struct {
	sinks []event.MetricsSink
}

// NewMultiSink drops nil sinks.
func NewMultiSink(sinks ...event.MetricsSink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *MultiSink) OnEmit(key string, handlerCount int) {
	for _, s := range m.sinks {
		s.OnEmit(key, handlerCount)
	}
}

func (m *MultiSink) OnHandlerResult(key, subscriptionID string, result event.HandlerResult) {
	for _, s := range m.sinks {
		s.OnHandlerResult(key, subscriptionID, result)
	}
}

func (m *MultiSink) OnPanic(key, subscriptionID, message string) {
	for _, s := range m.sinks {
		s.OnPanic(key, subscriptionID, message)
	}
}

// Close closes every sink that implements io.Closer-like Close() error and
// reports all failures together.
func (m *MultiSink) Close() error {
	chain := errors.NewErrorChain()
	for _, s := range m.sinks {
		if c, ok := s.(interface{ Close() error }); ok {
			chain.Add(c.Close())
		}
	}
	return chain.Err()
}

var (
	_ event.MetricsSink = (*CollectorSink)(nil)
	_ event.MetricsSink = (*LogSink)(nil)
	_ event.MetricsSink = (*MultiSink)(nil)
)
