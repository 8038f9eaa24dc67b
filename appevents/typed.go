package appevents

import (
	"fmt"

	"github.com/zenterm/zenbus/event"
	"github.com/zenterm/zenbus/json"
)

// Subscribe registers fn for events matching pattern whose payload is a T.
// A JSONPayload is decoded into T, so events emitted from the command line
// reach typed handlers too. Any other payload makes the handler report an
// error.
func Subscribe[T event.Payload](bus *event.Bus, pattern string, fn func(T) error) (event.Subscription, error) {
	return bus.SubscribeResult(pattern, func(p event.Payload) error {
		v, err := As[T](p)
		if err != nil {
			return err
		}
		return fn(v)
	})
}

// As converts p to T, decoding JSON payloads.
func As[T event.Payload](p event.Payload) (T, error) {
	if v, ok := event.PayloadAs[T](p); ok {
		return v, nil
	}
	var v T
	if raw, ok := p.(event.JSONPayload); ok {
		if err := json.Unmarshal(raw.Data, &v); err != nil {
			return v, fmt.Errorf("decode %s payload: %w", v.TypeName(), err)
		}
		return v, nil
	}
	return v, fmt.Errorf("expected %s payload, got %s", v.TypeName(), p.TypeName())
}

// Emit validates p and emits it under key. Nothing is emitted when
// validation fails.
func Emit[T event.Payload](bus *event.Bus, key string, p T) (event.EmitReport, error) {
	if err := Validate(p); err != nil {
		return event.NewEmitReport(key), err
	}
	return bus.EmitAndReport(key, p), nil
}

func EmitGPULimit(bus *event.Bus, percent uint8) (event.EmitReport, error) {
	return Emit(bus, GPULimitChanged, GPULimit{Percent: percent})
}

func EmitTheme(bus *event.Bus, dark bool) event.EmitReport {
	return bus.EmitAndReport(ThemeToggled, Theme{Dark: dark})
}

func EmitVoice(bus *event.Bus, enabled bool) event.EmitReport {
	return bus.EmitAndReport(VoiceToggled, Voice{Enabled: enabled})
}

func EmitLog(bus *event.Bus, level LogLevel, message string) (event.EmitReport, error) {
	return Emit(bus, LogMessage, Log{Level: level, Message: message})
}

func EmitConfigChanged(bus *event.Bus, section, key string, value any) (event.EmitReport, error) {
	return Emit(bus, ConfigChanged, ConfigChange{Section: section, Key: key, Value: value})
}

func EmitWizardOpened(bus *event.Bus) event.EmitReport {
	return event.EmitEmpty(bus, WizardOpened)
}

func EmitWizardClosed(bus *event.Bus) event.EmitReport {
	return event.EmitEmpty(bus, WizardClosed)
}

func EmitConfigSaveRequested(bus *event.Bus) event.EmitReport {
	return event.EmitEmpty(bus, ConfigSaveRequested)
}

func EmitQuitRequested(bus *event.Bus) event.EmitReport {
	return event.EmitEmpty(bus, QuitRequested)
}
