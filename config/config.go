package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/zenterm/zenbus/env_mode"
	"github.com/zenterm/zenbus/errors"
	"github.com/zenterm/zenbus/logging"
	"github.com/zenterm/zenbus/utils"
)

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

func DefaultConfigOptions() ConfigOptions {
	basePath := os.Getenv("ZENBUS_CONFIG_PATH")
	if basePath == "" {
		basePath = "config"
	}

	return ConfigOptions{
		BasePath:     basePath,
		FileName:     "config",
		FileType:     "yaml",
		EnvPrefix:    "ZENBUS",
		AllowMissing: true,
	}
}

func DevConfigOptions() ConfigOptions {
	opts := DefaultConfigOptions()
	opts.WatchAble = true
	return opts
}

func NewConfig(optsArr ...ConfigOptions) (*Config, error) {
	opts := DefaultConfigOptions()
	if len(optsArr) > 0 {
		opts = optsArr[0]
	}
	if opts.Logger == nil {
		opts.Logger = logging.Named("config")
	}

	instance, files, err := CreateConfig(opts)
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("config loaded", zap.Strings("files", files), zap.String("mode", env_mode.Current().String()))
	return &Config{
		instance: instance,
		opts:     opts,
		files:    files,
	}, nil
}

// Files returns the configuration files that were merged, lowest priority
// first.
func (c *Config) Files() []string {
	out := make([]string, len(c.files))
	copy(out, c.files)
	return out
}

// Bind decodes the configuration into instance, which must be a pointer.
// Environment variables named after instance's mapstructure keys override
// file values. With WatchAble set, later file changes are decoded into the
// same instance before OnChange runs.
func (c *Config) Bind(instance any) error {
	if c == nil || c.instance == nil {
		return errors.NewConfig("config instance is nil")
	}
	if instance == nil {
		return errors.NewConfig("target instance is nil")
	}

	c.watchMutex.Lock()
	defer c.watchMutex.Unlock()

	bindStructEnv(c.instance, "", reflect.TypeOf(instance))
	if err := c.instance.Unmarshal(instance); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig,
			fmt.Sprintf("unmarshal config (path: %s, file: %s.%s)", c.opts.BasePath, c.opts.FileName, c.opts.FileType)).
			WithCode(errors.CodeConfigInvalid)
	}

	if c.opts.WatchAble && len(c.files) > 0 {
		c.watchOnce.Do(func() {
			c.instance.OnConfigChange(func(e fsnotify.Event) {
				c.reload(e, instance)
			})
			c.instance.WatchConfig()
		})
	}

	return nil
}

func (c *Config) reload(e fsnotify.Event, instance any) {
	c.watchMutex.Lock()
	defer c.watchMutex.Unlock()

	fresh, _, err := CreateConfig(c.opts)
	if err != nil {
		c.opts.Logger.Warn("config reload failed", zap.String("file", e.Name), zap.Error(err))
		return
	}
	for _, key := range fresh.AllKeys() {
		c.instance.Set(key, fresh.Get(key))
	}
	if err := c.instance.Unmarshal(instance); err != nil {
		c.opts.Logger.Warn("config watch error", zap.String("file", e.Name), zap.Error(err))
		return
	}
	c.opts.Logger.Info("config reloaded", zap.String("file", e.Name))

	if c.opts.OnChange != nil {
		c.opts.OnChange(e)
	}
}

// BindWithDefaults fills `default` struct tags first, so keys missing from
// every source keep their default.
func (c *Config) BindWithDefaults(instance any) error {
	if err := defaults.Set(instance); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "set defaults").WithCode(errors.CodeConfigInvalid)
	}
	return c.Bind(instance)
}

func (c *Config) Get(key string) any {
	c.watchMutex.RLock()
	defer c.watchMutex.RUnlock()

	return c.instance.Get(key)
}

func (c *Config) Set(key string, value any) {
	c.watchMutex.Lock()
	defer c.watchMutex.Unlock()

	c.instance.Set(key, value)
}

// Snapshot returns all settings as a nested map.
func (c *Config) Snapshot() map[string]any {
	c.watchMutex.RLock()
	defer c.watchMutex.RUnlock()

	return c.instance.AllSettings()
}

func (c *Config) Export(path string) error {
	if path == "" {
		return errors.NewConfig("export path is empty")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "create directory "+dir)
	}

	c.watchMutex.RLock()
	defer c.watchMutex.RUnlock()
	if err := c.instance.WriteConfigAs(path); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "write config to "+path)
	}
	return nil
}

// CreateConfig merges every matching file into one viper instance. Later
// files win. The last file found is the one watched for changes.
func CreateConfig(opts ConfigOptions) (*viper.Viper, []string, error) {
	configPaths := getConfigFilePaths(opts)
	if len(configPaths) == 0 && !opts.AllowMissing {
		return nil, nil, errors.NewConfig("no configuration files found in path: " + opts.BasePath).
			WithDetail("path", opts.BasePath)
	}

	v := viper.New()
	v.SetConfigType(opts.FileType)

	for _, configPath := range configPaths {
		tempV := viper.New()
		tempV.SetConfigFile(configPath)
		if err := tempV.ReadInConfig(); err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrorTypeConfig, "read config file "+configPath).
				WithCode(errors.CodeConfigInvalid)
		}

		for _, key := range tempV.AllKeys() {
			v.Set(key, tempV.Get(key))
		}
	}
	if n := len(configPaths); n > 0 {
		v.SetConfigFile(configPaths[n-1])
	}

	v.SetEnvKeyReplacer(envKeyReplacer)
	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(opts.EnvPrefix)
	}
	v.AutomaticEnv()

	applyEnvOverrides(v, opts.EnvPrefix)

	return v, configPaths, nil
}

// applyEnvOverrides gives environment variables priority over values
// already read from files.
func applyEnvOverrides(v *viper.Viper, envPrefix string) {
	for _, key := range v.AllKeys() {
		if envValue, ok := os.LookupEnv(envName(envPrefix, key)); ok && envValue != "" {
			v.Set(key, envValue)
		}
	}
}

func envName(prefix, key string) string {
	name := strings.ToUpper(envKeyReplacer.Replace(key))
	if prefix != "" {
		name = strings.ToUpper(prefix) + "_" + name
	}
	return name
}

// bindStructEnv registers every mapstructure key of t with viper so env
// variables apply even when no file mentions the key.
func bindStructEnv(v *viper.Viper, prefix string, t reflect.Type) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := strings.Split(field.Tag.Get("mapstructure"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		ft := field.Type
		for ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && ft.PkgPath() != "time" {
			bindStructEnv(v, key, ft)
			continue
		}
		_ = v.BindEnv(key)
	}
}

func getConfigFilePaths(opts ConfigOptions) (configFiles []string) {
	env := env_mode.Current()
	fileNames := []string{
		opts.FileName,
		fmt.Sprintf("%s.local", opts.FileName),
	}

	var aliases []string
	switch env {
	case env_mode.DevMode:
		aliases = []string{"dev", "development"}
	case env_mode.ProMode:
		aliases = []string{"pro", "prod", "production"}
	case env_mode.TestMode:
		aliases = []string{"test"}
	}
	for _, alias := range aliases {
		fileNames = append(fileNames,
			fmt.Sprintf("%s.%s", opts.FileName, alias),
			fmt.Sprintf("%s.%s.local", opts.FileName, alias),
		)
	}

	seen := make(map[string]struct{}, len(fileNames))
	for _, fileName := range fileNames {
		file := filepath.Join(opts.BasePath, fmt.Sprintf("%s.%s", fileName, opts.FileType))
		if _, dup := seen[file]; dup {
			continue
		}
		seen[file] = struct{}{}
		if utils.IsFile(file) {
			configFiles = append(configFiles, file)
		}
	}

	return configFiles
}
