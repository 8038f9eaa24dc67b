package main

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zenterm/zenbus/appevents"
	"github.com/zenterm/zenbus/config"
	"github.com/zenterm/zenbus/event"
	"github.com/zenterm/zenbus/logging"
	"github.com/zenterm/zenbus/metrics"
	"github.com/zenterm/zenbus/utils"
)

type serveOptions struct {
	addr        string
	interval    time.Duration
	printRoutes bool
}

func newServeCmd(a *app) *cobra.Command {
	o := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve bus metrics over HTTP while emitting a demo event sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if o.addr == "" {
				o.addr = a.cfg.Metrics.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, a.cfg, a.logger, o)
		},
	}
	cmd.Flags().StringVar(&o.addr, "addr", "", "listen address (default metrics.addr)")
	cmd.Flags().DurationVar(&o.interval, "interval", 2*time.Second, "delay between demo emit rounds; 0 disables them")
	cmd.Flags().BoolVar(&o.printRoutes, "print-routes", false, "list the HTTP routes before serving")
	return cmd
}

// server is a bus plus the collector and router exposing it.
type server struct {
	bus       *event.Bus
	collector *metrics.Collector
	state     *appevents.State
	handler   chi.Router
	close     func() error
}

// newServer always records into a collector. A configured sink without one
// is kept and fanned out alongside it.
func newServer(ctx context.Context, cfg *config.AppConfig, logger logging.Logger) (*server, error) {
	sinks, err := cfg.BuildSinks(ctx, logger.Named("metrics"))
	if err != nil {
		return nil, err
	}

	collector := sinks.Collector
	sink := sinks.Sink
	if collector == nil {
		cs := metrics.NewCollectorSink(nil)
		collector = cs.Collector()
		sink = metrics.NewMultiSink(cs, sinks.Sink)
	}

	bus := cfg.Bus.Apply(event.NewBuilder()).
		MetricsSink(sink).
		Logger(logger.Named("event")).
		Build()

	state := appevents.NewState(appevents.DefaultSettings(), nil)
	if err := state.Attach(bus); err != nil {
		_ = sinks.Close()
		return nil, err
	}

	handler := metrics.Router(collector, func() map[string]interface{} {
		return map[string]interface{}{
			"subscriptions": bus.SubscriptionCount(),
			"catch_panics":  bus.CatchPanics(),
		}
	}, logger.Named("http"))

	return &server{
		bus:       bus,
		collector: collector,
		state:     state,
		handler:   handler,
		close:     sinks.Close,
	}, nil
}

// demoRound emits one pass over the application events, flipping toggles
// so successive rounds differ.
func (s *server) demoRound(round int) {
	on := round%2 == 0
	appevents.EmitWizardOpened(s.bus)
	_, _ = appevents.EmitGPULimit(s.bus, uint8(50+round%50))
	appevents.EmitTheme(s.bus, on)
	appevents.EmitVoice(s.bus, !on)
	appevents.EmitWizardClosed(s.bus)
	appevents.EmitConfigSaveRequested(s.bus)
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.AppConfig, logger logging.Logger, o *serveOptions) error {
	srv, err := newServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer srv.close()

	if o.printRoutes {
		if err := utils.PrintRoutes(cmd.OutOrStdout(), srv.handler); err != nil {
			return err
		}
	}

	ln, err := net.Listen("tcp", o.addr)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", zap.String("addr", ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	var tick <-chan time.Time
	if o.interval > 0 {
		ticker := time.NewTicker(o.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	round := 0
	for {
		select {
		case <-tick:
			srv.demoRound(round)
			round++
		case err := <-errCh:
			return err
		case <-ctx.Done():
			logger.Info("shutting down metrics server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return <-errCh
		}
	}
}
