package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/zenterm/zenbus/logging"
)

type Validator interface {
	Validate() error
}

type Config struct {
	instance   *viper.Viper
	opts       ConfigOptions
	files      []string
	watchOnce  sync.Once
	watchMutex sync.RWMutex
}

type ConfigOptions struct {
	BasePath  string
	FileName  string
	FileType  string
	EnvPrefix string
	// AllowMissing starts from an empty configuration when no file matches
	// instead of failing.
	AllowMissing bool
	WatchAble    bool
	OnChange     func(e fsnotify.Event)
	Logger       logging.Logger
}
