package appevents

import (
	"fmt"
	"sync"

	"github.com/creasty/defaults"

	"github.com/zenterm/zenbus/event"
)

// Settings are the persisted application settings.
type Settings struct {
	GPULimit     uint8 `json:"gpu_limit" default:"100"`
	DarkMode     bool  `json:"dark_mode" default:"true"`
	VoiceEnabled bool  `json:"voice_enabled"`
}

func DefaultSettings() Settings {
	var s Settings
	_ = defaults.Set(&s)
	return s
}

// SaveFunc persists settings.
type SaveFunc func(Settings) error

// State folds application events into the current settings and UI flags.
// Handlers run on the emitting goroutine; State guards itself with a mutex.
type State struct {
	mu            sync.RWMutex
	settings      Settings
	dirty         bool
	wizardOpen    bool
	quitRequested bool
	messages      []Log
	maxMessages   int

	bus  *event.Bus
	save SaveFunc
	subs []event.Subscription
}

// NewState starts from initial. save may be nil, in which case save requests
// only clear the dirty flag.
func NewState(initial Settings, save SaveFunc) *State {
	return &State{settings: initial, save: save, maxMessages: 200}
}

// Attach subscribes the state to bus. Successful saves emit config.changed
// once per setting on the same bus.
func (s *State) Attach(bus *event.Bus) error {
	s.mu.Lock()
	s.bus = bus
	s.mu.Unlock()

	register := func(sub event.Subscription, err error) error {
		if err != nil {
			return err
		}
		s.subs = append(s.subs, sub)
		return nil
	}

	steps := []func() error{
		func() error { return register(Subscribe(bus, GPULimitChanged, s.onGPULimit)) },
		func() error { return register(Subscribe(bus, ThemeToggled, s.onTheme)) },
		func() error { return register(Subscribe(bus, VoiceToggled, s.onVoice)) },
		func() error { return register(Subscribe(bus, LogMessage, s.onLog)) },
		func() error { return register(bus.Subscribe(WizardOpened, func(event.Payload) { s.setWizard(true) })) },
		func() error { return register(bus.Subscribe(WizardClosed, func(event.Payload) { s.setWizard(false) })) },
		func() error { return register(bus.Subscribe(QuitRequested, func(event.Payload) { s.setQuit() })) },
		func() error { return register(bus.SubscribeResult(ConfigSaveRequested, func(event.Payload) error { return s.Save() })) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			s.Detach()
			return err
		}
	}
	return nil
}

// Detach removes every subscription made by Attach.
func (s *State) Detach() {
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	s.subs = nil
}

func (s *State) onGPULimit(p GPULimit) error {
	if err := Validate(p); err != nil {
		s.appendLog(LevelError, fmt.Sprintf("GPU Error: limit %d%% out of range", p.Percent))
		return err
	}
	s.mu.Lock()
	s.settings.GPULimit = p.Percent
	s.dirty = true
	s.mu.Unlock()
	s.appendLog(LevelInfo, fmt.Sprintf("GPU limit set to %d%%", p.Percent))
	return nil
}

func (s *State) onTheme(p Theme) error {
	s.mu.Lock()
	s.settings.DarkMode = p.Dark
	s.dirty = true
	s.mu.Unlock()
	s.appendLog(LevelInfo, "Theme changed to "+p.Name())
	return nil
}

func (s *State) onVoice(p Voice) error {
	s.mu.Lock()
	s.settings.VoiceEnabled = p.Enabled
	s.dirty = true
	s.mu.Unlock()
	status := "disabled"
	if p.Enabled {
		status = "enabled"
	}
	s.appendLog(LevelInfo, "Voice engine "+status)
	return nil
}

func (s *State) onLog(p Log) error {
	if p.Level == "" {
		p.Level = LevelInfo
	}
	s.mu.Lock()
	s.pushLocked(p)
	s.mu.Unlock()
	return nil
}

func (s *State) setWizard(open bool) {
	s.mu.Lock()
	s.wizardOpen = open
	s.mu.Unlock()
	if open {
		s.appendLog(LevelInfo, "Setup wizard opened")
	} else {
		s.appendLog(LevelInfo, "Setup wizard closed")
	}
}

func (s *State) setQuit() {
	s.mu.Lock()
	s.quitRequested = true
	s.mu.Unlock()
	s.appendLog(LevelInfo, "Quit requested")
}

// Save persists the current settings and, on success, clears the dirty flag
// and emits config.changed for each setting.
func (s *State) Save() error {
	s.mu.RLock()
	settings := s.settings
	save := s.save
	bus := s.bus
	s.mu.RUnlock()

	if save != nil {
		if err := save(settings); err != nil {
			s.appendLog(LevelError, "Config save failed: "+err.Error())
			return err
		}
	}

	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
	s.appendLog(LevelInfo, "Configuration saved")

	if bus != nil {
		_, _ = EmitConfigChanged(bus, "gpu", "limit_percentage", settings.GPULimit)
		_, _ = EmitConfigChanged(bus, "theme", "dark_mode", settings.DarkMode)
		_, _ = EmitConfigChanged(bus, "voice", "enabled", settings.VoiceEnabled)
	}
	return nil
}

func (s *State) appendLog(level LogLevel, message string) {
	s.mu.Lock()
	s.pushLocked(Log{Level: level, Message: message})
	s.mu.Unlock()
}

func (s *State) pushLocked(l Log) {
	s.messages = append(s.messages, l)
	if over := len(s.messages) - s.maxMessages; over > 0 {
		s.messages = s.messages[over:]
	}
}

func (s *State) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Dirty reports whether settings changed since the last successful save.
func (s *State) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *State) WizardOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wizardOpen
}

func (s *State) QuitRequested() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quitRequested
}

// Messages returns the most recent log messages, oldest first.
func (s *State) Messages() []Log {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Log, len(s.messages))
	copy(out, s.messages)
	return out
}
