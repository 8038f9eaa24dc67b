package event

import (
	"go.uber.org/zap"

	"github.com/zenterm/zenbus/errors"
	"github.com/zenterm/zenbus/logging"
)

var (
	// ErrInvalidPattern matches any error returned for a malformed pattern.
	ErrInvalidPattern = errors.New(errors.ErrorTypeInvalidPattern, "invalid pattern").WithCode(errors.CodeInvalidPattern)
	// ErrInvalidKey matches any error returned for a malformed event key.
	ErrInvalidKey = errors.New(errors.ErrorTypeInvalidKey, "invalid event key").WithCode(errors.CodeInvalidKey)
	// ErrNilHandler is returned when subscribing a nil handler.
	ErrNilHandler = errors.New(errors.ErrorTypeNilHandler, "nil handler").WithCode(errors.CodeNilHandler)
)

// Bus routes emitted events to pattern subscriptions.
//
// Emits run synchronously on the caller's goroutine and invoke matching
// handlers one after another in registration order. Subscribing and
// unsubscribing are safe from any goroutine, including from inside a
// handler; an emit already in progress keeps the handler set it started with.
//
// With CatchPanics on, a handler panic is contained and reported. A handler
// that calls runtime.Goexit (t.FailNow, for one) is logged and reported to
// the sink, but it still ends the emitting goroutine.
type Bus struct {
	registry   *registry
	dispatcher dispatcher
	logger     logging.Logger
}

// New returns a bus with default settings.
func New() *Bus {
	return NewBuilder().Build()
}

// Subscribe registers a side-effect handler for pattern.
func (b *Bus) Subscribe(pattern string, handler Handler) (Subscription, error) {
	if handler == nil {
		return Subscription{}, errors.NewNilHandler(pattern)
	}
	return b.register(pattern, &entry{handler: handler})
}

// SubscribeResult registers a handler whose non-nil error is reported as an
// Error outcome.
func (b *Bus) SubscribeResult(pattern string, handler ResultHandler) (Subscription, error) {
	if handler == nil {
		return Subscription{}, errors.NewNilHandler(pattern)
	}
	return b.register(pattern, &entry{result: handler})
}

// MustSubscribe is like Subscribe but panics on an invalid pattern.
func (b *Bus) MustSubscribe(pattern string, handler Handler) Subscription {
	sub, err := b.Subscribe(pattern, handler)
	if err != nil {
		panic(err)
	}
	return sub
}

func (b *Bus) register(pattern string, e *entry) (Subscription, error) {
	p, err := ParsePattern(pattern)
	if err != nil {
		return Subscription{}, err
	}
	e.id = newSubscriptionID()
	e.pattern = p
	b.registry.add(e)

	b.logger.Debug("subscribed", logging.Pattern(pattern), logging.SubscriptionID(e.id))
	return Subscription{ID: e.id, Pattern: pattern, bus: b}, nil
}

// Unsubscribe removes the subscription with id. It reports whether anything
// was removed.
func (b *Bus) Unsubscribe(id string) bool {
	removed := b.registry.remove(id)
	if removed {
		b.logger.Debug("unsubscribed", logging.SubscriptionID(id))
	}
	return removed
}

// Clear removes every subscription and returns how many there were.
func (b *Bus) Clear() int {
	n := b.registry.clear()
	if n > 0 {
		b.logger.Debug("subscriptions cleared", zap.Int("removed", n))
	}
	return n
}

// SubscriptionCount returns the number of registered subscriptions.
func (b *Bus) SubscriptionCount() int {
	return b.registry.len()
}

// Subscriptions lists registered subscriptions in registration order.
func (b *Bus) Subscriptions() []Subscription {
	entries := b.registry.load()
	subs := make([]Subscription, len(entries))
	for i, e := range entries {
		subs[i] = Subscription{ID: e.id, Pattern: e.pattern.String(), bus: b}
	}
	return subs
}

// CatchPanics reports whether handler panics are isolated.
func (b *Bus) CatchPanics() bool { return b.dispatcher.catchPanics }

// TracingEnabled reports whether the bus was built with tracing on.
func (b *Bus) TracingEnabled() bool { return b.dispatcher.tracing }

// MetricsSink returns the sink the bus reports to.
func (b *Bus) MetricsSink() MetricsSink { return b.dispatcher.sink }

// EmitAndReport delivers payload to every subscription matching key and
// returns the per-outcome accounting. A nil payload is delivered as
// EmptyPayload. An invalid key reaches no handler and yields an empty report.
func (b *Bus) EmitAndReport(key string, payload Payload) EmitReport {
	report, err := b.EmitChecked(key, payload)
	if err != nil {
		b.logger.Warn("emit rejected", logging.EventKey(key), zap.Error(err))
	}
	return report
}

// EmitChecked is EmitAndReport that returns an ErrInvalidKey error instead
// of logging it.
func (b *Bus) EmitChecked(key string, payload Payload) (EmitReport, error) {
	if err := ValidateKey(key); err != nil {
		return NewEmitReport(key), err
	}
	if payload == nil {
		payload = EmptyPayload{}
	}
	return b.dispatcher.dispatch(key, payload, b.registry.snapshot(key)), nil
}

// Emit delivers payload and discards the report.
func (b *Bus) Emit(key string, payload Payload) {
	b.EmitAndReport(key, payload)
}

// EmitAndCount delivers payload and returns how many handlers were invoked,
// whatever their outcome.
func (b *Bus) EmitAndCount(key string, payload Payload) int {
	return b.EmitAndReport(key, payload).Handlers
}

// EmitSyncSequential delivers payload and returns the report. Every handler
// has returned before it does, and handlers ran one at a time on the calling
// goroutine in registration order.
func (b *Bus) EmitSyncSequential(key string, payload Payload) EmitReport {
	return b.EmitAndReport(key, payload)
}

// EmitWait behaves exactly like EmitAndCount.
//
// Deprecated: use EmitAndCount, or EmitAndReport for the full outcome.
func (b *Bus) EmitWait(key string, payload Payload) int {
	b.logger.Warn("EmitWait is deprecated, use EmitAndCount or EmitAndReport", logging.EventKey(key))
	return b.EmitAndCount(key, payload)
}
