package logging

import "go.uber.org/zap"

// Field helpers shared by the bus and its sinks so log keys stay consistent.

func EventKey(key string) zap.Field {
	return zap.String("event_key", key)
}

func Pattern(pattern string) zap.Field {
	return zap.String("pattern", pattern)
}

func SubscriptionID(id string) zap.Field {
	return zap.String("subscription_id", id)
}

func HandlerCount(n int) zap.Field {
	return zap.Int("handlers", n)
}

// Outcome records a handler outcome kind ("success", "error", "panic").
func Outcome(kind string) zap.Field {
	return zap.String("outcome", kind)
}
