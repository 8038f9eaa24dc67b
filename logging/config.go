package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// Config represents the logger configuration.
type Config struct {
	// Name is the root logger name. Empty means unnamed.
	Name string `mapstructure:"name" json:"name" yaml:"name"`

	// Director is the directory for per-level log files. Empty disables file output.
	Director string `mapstructure:"director" json:"director" yaml:"director"`

	// Level is the minimum log level (debug, info, warn, error).
	Level string `mapstructure:"level" json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`

	// Format is the log format (json or console).
	Format string `mapstructure:"format" json:"format" yaml:"format" validate:"omitempty,oneof=json console"`

	// EncodeLevel selects the level encoder (LowercaseLevelEncoder, CapitalColorLevelEncoder, ...).
	EncodeLevel string `mapstructure:"encode-level" json:"encodeLevel" yaml:"encode-level"`

	// TimeFormat is a Go time layout.
	TimeFormat string `mapstructure:"time-format" json:"timeFormat" yaml:"time-format"`

	// LogInTerminal tees file output to stdout.
	LogInTerminal bool `mapstructure:"log-in-terminal" json:"logInTerminal" yaml:"log-in-terminal"`

	MaxAge     int  `mapstructure:"max-age" json:"maxAge" yaml:"max-age"`
	MaxSize    int  `mapstructure:"max-size" json:"maxSize" yaml:"max-size"`
	MaxBackups int  `mapstructure:"max-backups" json:"maxBackups" yaml:"max-backups"`
	Compress   bool `mapstructure:"compress" json:"compress" yaml:"compress"`

	// ShowLineNumber adds caller information to log entries.
	ShowLineNumber bool `mapstructure:"show-line-number" json:"showLineNumber" yaml:"show-line-number"`
}

// DefaultConfig returns a console-only configuration at info level.
func DefaultConfig() Config {
	return Config{
		Name:           "zenbus",
		Director:       "",
		Level:          "info",
		Format:         "console",
		EncodeLevel:    "LowercaseLevelEncoder",
		TimeFormat:     "2006/01/02 - 15:04:05.000",
		LogInTerminal:  true,
		MaxAge:         7,
		MaxSize:        50,
		MaxBackups:     5,
		Compress:       true,
		ShowLineNumber: false,
	}
}

// TransportLevel converts the string level to zapcore.Level. Unknown
// values fall back to info.
func (c Config) TransportLevel() zapcore.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "dpanic":
		return zapcore.DPanicLevel
	case "panic":
		return zapcore.PanicLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// ZapEncodeLevel returns the zapcore.LevelEncoder named by EncodeLevel.
func (c Config) ZapEncodeLevel() zapcore.LevelEncoder {
	switch c.EncodeLevel {
	case "LowercaseColorLevelEncoder":
		return zapcore.LowercaseColorLevelEncoder
	case "CapitalLevelEncoder":
		return zapcore.CapitalLevelEncoder
	case "CapitalColorLevelEncoder":
		return zapcore.CapitalColorLevelEncoder
	default:
		return zapcore.LowercaseLevelEncoder
	}
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Level == "" {
		c.Level = defaults.Level
	}
	if c.Format == "" {
		c.Format = defaults.Format
	}
	if c.TimeFormat == "" {
		c.TimeFormat = defaults.TimeFormat
	}
	if c.MaxAge == 0 {
		c.MaxAge = defaults.MaxAge
	}
	if c.MaxSize == 0 {
		c.MaxSize = defaults.MaxSize
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = defaults.MaxBackups
	}
}
