// Package appevents is the catalog of application event keys and their
// payloads, with typed helpers for emitting and subscribing.
package appevents

// Event keys.
const (
	GPULimitChanged     = "gpu.limit.changed"
	ThemeToggled        = "theme.toggled"
	VoiceToggled        = "voice.toggled"
	WizardOpened        = "wizard.opened"
	WizardClosed        = "wizard.closed"
	ConfigSaveRequested = "config.save.requested"
	ConfigChanged       = "config.changed"
	LogMessage          = "log.message"
	QuitRequested       = "app.quit.requested"
)

// Patterns covering groups of keys.
const (
	AllEvents    = "**"
	WizardEvents = "wizard.*"
	ConfigEvents = "config.**"
)

// Keys lists every application event key.
func Keys() []string {
	return []string{
		GPULimitChanged,
		ThemeToggled,
		VoiceToggled,
		WizardOpened,
		WizardClosed,
		ConfigSaveRequested,
		ConfigChanged,
		LogMessage,
		QuitRequested,
	}
}
