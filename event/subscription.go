package event

import (
	"strings"

	"github.com/google/uuid"
)

// Handler is a side-effect-only subscriber. It can succeed or panic but
// never report an error.
type Handler func(Payload)

// ResultHandler is a subscriber that reports failure by returning an error.
type ResultHandler func(Payload) error

// Subscription identifies one registration on a bus.
type Subscription struct {
	ID      string `json:"id"`
	Pattern string `json:"pattern"`

	bus *Bus
}

// Unsubscribe removes the subscription from the bus it was created on. It
// reports whether the subscription was still registered.
func (s Subscription) Unsubscribe() bool {
	if s.bus == nil {
		return false
	}
	return s.bus.Unsubscribe(s.ID)
}

// Active reports whether the subscription is still registered.
func (s Subscription) Active() bool {
	return s.bus != nil && s.bus.registry.has(s.ID)
}

func newSubscriptionID() string {
	return "sub_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// entry is one immutable registry row.
type entry struct {
	id      string
	pattern Pattern
	handler Handler
	result  ResultHandler
}

// call runs the handler without any panic protection.
func (e *entry) call(payload Payload) HandlerResult {
	if e.result != nil {
		if err := e.result(payload); err != nil {
			return Failure(err.Error())
		}
		return Success()
	}
	e.handler(payload)
	return Success()
}
