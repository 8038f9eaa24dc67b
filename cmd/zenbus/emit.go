package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zenterm/zenbus/appevents"
	"github.com/zenterm/zenbus/errors"
	"github.com/zenterm/zenbus/event"
	"github.com/zenterm/zenbus/utils"
)

type emitOptions struct {
	text          string
	json          string
	noCatchPanics bool
	sink          string
}

type emitOutput struct {
	Report        event.EmitReport `json:"report"`
	Payload       string           `json:"payload"`
	Subscriptions int              `json:"subscriptions"`
}

func newEmitCmd(a *app) *cobra.Command {
	o := &emitOptions{}
	cmd := &cobra.Command{
		Use:   "emit <key>",
		Short: "Emit one event through a configured bus and print the report",
		Long: `emit builds a bus from configuration, attaches the application state
and log subscribers, emits <key> once and prints the handler report as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(cmd, a, o, args[0])
		},
	}
	cmd.Flags().StringVar(&o.text, "text", "", "send a text payload")
	cmd.Flags().StringVar(&o.json, "json", "", "send a JSON payload")
	cmd.Flags().BoolVar(&o.noCatchPanics, "no-catch-panics", false, "let handler panics propagate")
	cmd.Flags().StringVar(&o.sink, "sink", "", "override bus.sink")
	cmd.MarkFlagsMutuallyExclusive("text", "json")
	return cmd
}

func buildPayload(o *emitOptions) (event.Payload, error) {
	switch {
	case o.json != "":
		p, err := event.JSONPayloadFromRaw([]byte(o.json))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "--json is not valid JSON")
		}
		return p, nil
	case o.text != "":
		return event.NewTextPayload(o.text), nil
	default:
		return event.EmptyPayload{}, nil
	}
}

func runEmit(cmd *cobra.Command, a *app, o *emitOptions, key string) error {
	if err := event.ValidateKey(key); err != nil {
		return err
	}
	payload, err := buildPayload(o)
	if err != nil {
		return err
	}

	cfg := *a.cfg
	if o.noCatchPanics {
		cfg.Bus.CatchPanics = false
	}
	if o.sink != "" {
		cfg.Bus.Sink = o.sink
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sinks, err := cfg.BuildSinks(ctx, a.logger.Named("metrics"))
	if err != nil {
		return err
	}
	defer sinks.Close()

	bus := cfg.NewBus(sinks, a.logger.Named("event"))
	state := appevents.NewState(appevents.DefaultSettings(), nil)
	if err := state.Attach(bus); err != nil {
		return err
	}
	if _, err := appevents.RegisterLogSubscribers(bus, a.logger.Named("app")); err != nil {
		return err
	}

	report, err := bus.EmitChecked(key, payload)
	if err != nil {
		return err
	}
	return utils.PrintJSON(cmd.OutOrStdout(), emitOutput{
		Report:        report,
		Payload:       payload.TypeName(),
		Subscriptions: bus.SubscriptionCount(),
	})
}
