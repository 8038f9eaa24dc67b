package main

import (
	"github.com/spf13/cobra"

	"github.com/zenterm/zenbus/config"
	"github.com/zenterm/zenbus/env_mode"
	"github.com/zenterm/zenbus/logging"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configDir string
	envMode   string
	logLevel  string

	cfg    *config.AppConfig
	logger logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "zenbus",
		Short: "Pattern-routed event bus tooling",
		Long: `zenbus exercises the event bus from the command line: check how a
pattern matches a key, emit application events through a configured bus,
or serve bus metrics over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}

	opts := config.DefaultConfigOptions()
	root.PersistentFlags().StringVarP(&a.configDir, "config-dir", "c", opts.BasePath, "directory holding config.yaml and its mode variants")
	root.PersistentFlags().StringVar(&a.envMode, "env", "", "runtime mode (development, production, test); defaults to $ZENBUS_ENV")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level")

	root.AddCommand(
		newCheckPatternCmd(),
		newEmitCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) load() error {
	if a.envMode != "" {
		env_mode.Set(env_mode.Parse(a.envMode))
	}

	opts := config.DefaultConfigOptions()
	opts.BasePath = a.configDir
	opts.Logger = logging.Nop()

	cfg, _, err := config.LoadAppConfig(opts)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	a.cfg = cfg
	a.logger = logging.Init(cfg.Log)
	return nil
}
