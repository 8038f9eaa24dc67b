package appevents

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/zenterm/zenbus/errors"
	"github.com/zenterm/zenbus/event"
)

type GPULimit struct {
	Percent uint8 `json:"percent" validate:"lte=100"`
}

func (GPULimit) TypeName() string { return "gpu_limit" }

type Theme struct {
	Dark bool `json:"dark"`
}

func (Theme) TypeName() string { return "theme" }

// Name is "dark" or "light".
func (t Theme) Name() string {
	if t.Dark {
		return "dark"
	}
	return "light"
}

type Voice struct {
	Enabled bool `json:"enabled"`
}

func (Voice) TypeName() string { return "voice" }

type LogLevel string

const (
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

type Log struct {
	Level   LogLevel `json:"level" default:"info" validate:"oneof=info warn error"`
	Message string   `json:"message" validate:"required"`
}

func (Log) TypeName() string { return "log" }

// ConfigChange describes one persisted setting.
type ConfigChange struct {
	Section string `json:"section" validate:"required"`
	Key     string `json:"key" validate:"required"`
	Value   any    `json:"value"`
}

func (ConfigChange) TypeName() string { return "config_change" }

func (c ConfigChange) Path() string {
	return c.Section + "." + c.Key
}

var validate = validator.New()

// Validate checks a payload's validate tags.
func Validate(p event.Payload) error {
	if err := validate.Struct(p); err != nil {
		return errors.New(errors.ErrorTypeHandler, fmt.Sprintf("invalid %s payload", p.TypeName())).
			WithCode(errors.CodeHandlerFailed).
			WithInnerError(err)
	}
	return nil
}

var (
	_ event.Payload = GPULimit{}
	_ event.Payload = Theme{}
	_ event.Payload = Voice{}
	_ event.Payload = Log{}
	_ event.Payload = ConfigChange{}
)
