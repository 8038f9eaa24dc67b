package event

// Shorthands for building a payload and emitting it in one call.

// EmitEmpty emits key with no payload.
func EmitEmpty(b *Bus, key string) EmitReport {
	return b.EmitAndReport(key, EmptyPayload{})
}

// EmitText emits key with a TextPayload.
func EmitText(b *Bus, key, text string) EmitReport {
	return b.EmitAndReport(key, NewTextPayload(text))
}

// EmitJSON encodes v and emits it as a JSONPayload. Nothing is emitted when
// encoding fails.
func EmitJSON(b *Bus, key string, v any) (EmitReport, error) {
	payload, err := NewJSONPayload(v)
	if err != nil {
		return NewEmitReport(key), err
	}
	return b.EmitAndReport(key, payload), nil
}

// EmitValue emits v wrapped in a ValuePayload. Payload values are passed
// through unchanged.
func EmitValue[T any](b *Bus, key string, v T) EmitReport {
	if p, ok := any(v).(Payload); ok {
		return b.EmitAndReport(key, p)
	}
	return b.EmitAndReport(key, NewValuePayload(v))
}
