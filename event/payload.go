package event

import (
	"fmt"

	"github.com/zenterm/zenbus/json"
)

// Payload is the data carried by an emitted event. Payloads carry no
// dispatch semantics; handlers type-switch or use PayloadAs.
type Payload interface {
	// TypeName names the payload type for logs and diagnostics.
	TypeName() string
}

// EmptyPayload is used for events that carry no data.
type EmptyPayload struct{}

func (EmptyPayload) TypeName() string { return "empty" }

// TextPayload carries a plain string.
type TextPayload struct {
	Content string `json:"content"`
}

func NewTextPayload(content string) TextPayload {
	return TextPayload{Content: content}
}

func (TextPayload) TypeName() string { return "text" }

func (p TextPayload) String() string { return p.Content }

// JSONPayload carries an encoded JSON document.
type JSONPayload struct {
	Data json.RawMessage `json:"data"`
}

// NewJSONPayload encodes v. Struct pointers get their default tags applied
// first.
func NewJSONPayload(v any) (JSONPayload, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return JSONPayload{}, fmt.Errorf("encode json payload: %w", err)
	}
	return JSONPayload{Data: data}, nil
}

// JSONPayloadFromRaw wraps already-encoded JSON, rejecting malformed input.
func JSONPayloadFromRaw(raw []byte) (JSONPayload, error) {
	if !json.Valid(raw) {
		return JSONPayload{}, fmt.Errorf("invalid json payload")
	}
	data := make([]byte, len(raw))
	copy(data, raw)
	return JSONPayload{Data: data}, nil
}

func (JSONPayload) TypeName() string { return "json" }

// Decode unmarshals the payload into v.
func (p JSONPayload) Decode(v any) error {
	if err := json.Unmarshal(p.Data, v); err != nil {
		return fmt.Errorf("decode json payload: %w", err)
	}
	return nil
}

func (p JSONPayload) String() string { return string(p.Data) }

// ValuePayload carries an arbitrary typed value.
type ValuePayload[T any] struct {
	Value T
}

func NewValuePayload[T any](v T) ValuePayload[T] {
	return ValuePayload[T]{Value: v}
}

func (p ValuePayload[T]) TypeName() string {
	return fmt.Sprintf("%T", p.Value)
}

// PayloadAs extracts a T from p. It accepts a ValuePayload[T], a
// *ValuePayload[T], or a payload that is itself a T.
func PayloadAs[T any](p Payload) (T, bool) {
	switch v := p.(type) {
	case ValuePayload[T]:
		return v.Value, true
	case *ValuePayload[T]:
		if v != nil {
			return v.Value, true
		}
	}
	if v, ok := any(p).(T); ok {
		return v, true
	}
	var zero T
	return zero, false
}
