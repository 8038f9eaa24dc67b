package config

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"github.com/zenterm/zenbus/errors"
	"github.com/zenterm/zenbus/event"
	"github.com/zenterm/zenbus/logging"
	"github.com/zenterm/zenbus/metrics"
	"github.com/zenterm/zenbus/redis_client"
)

// Sink names accepted by BusSettings.Sink.
const (
	SinkNoop      = "noop"
	SinkCollector = "collector"
	SinkLog       = "log"
	SinkRedis     = "redis"
	SinkMulti     = "multi"
)

// AppConfig is the top-level configuration file layout.
type AppConfig struct {
	Bus     BusSettings         `mapstructure:"bus" json:"bus" yaml:"bus"`
	Log     logging.Config      `mapstructure:"log" json:"log" yaml:"log"`
	Metrics MetricsSettings     `mapstructure:"metrics" json:"metrics" yaml:"metrics"`
	Redis   redis_client.Config `mapstructure:"redis" json:"redis" yaml:"redis"`
}

// BusSettings are the policies fixed when a bus is built. Changing them in
// a watched file has no effect on buses that already exist.
type BusSettings struct {
	CatchPanics bool   `mapstructure:"catch-panics" json:"catchPanics" yaml:"catch-panics" default:"true"`
	Tracing     bool   `mapstructure:"tracing" json:"tracing" yaml:"tracing"`
	Sink        string `mapstructure:"sink" json:"sink" yaml:"sink" default:"noop" validate:"oneof=noop collector log redis multi"`
}

type MetricsSettings struct {
	// Addr is where `zenbus serve` exposes the metrics router.
	Addr string `mapstructure:"addr" json:"addr" yaml:"addr" default:":9090" validate:"required"`
	// Async moves sink work off the emitting goroutine.
	Async        bool                    `mapstructure:"async" json:"async" yaml:"async"`
	AsyncBuffer  int                     `mapstructure:"async-buffer" json:"asyncBuffer" yaml:"async-buffer" default:"1024" validate:"gte=1"`
	AsyncWorkers int                     `mapstructure:"async-workers" json:"asyncWorkers" yaml:"async-workers" default:"1" validate:"gte=1"`
	Redis        metrics.RedisSinkConfig `mapstructure:"redis" json:"redis" yaml:"redis"`
}

// NewAppConfig returns an AppConfig with every default applied.
func NewAppConfig() *AppConfig {
	cfg := &AppConfig{Log: logging.DefaultConfig()}
	// defaults.Set only fails on non-pointer input
	_ = defaults.Set(cfg)
	return cfg
}

// LoadAppConfig reads, defaults and validates the application configuration.
func LoadAppConfig(opts ...ConfigOptions) (*AppConfig, *Config, error) {
	c, err := NewConfig(opts...)
	if err != nil {
		return nil, nil, err
	}
	app := NewAppConfig()
	if err := c.Bind(app); err != nil {
		return nil, nil, err
	}
	if err := app.Validate(); err != nil {
		return nil, nil, err
	}
	return app, c, nil
}

var validate = validator.New()

// Validate checks every section and reports all failures at once.
func (a *AppConfig) Validate() error {
	chain := errors.NewErrorChain()
	chain.Add(validateSection("bus", &a.Bus))
	chain.Add(validateSection("log", &a.Log))
	chain.Add(validateSection("metrics", &a.Metrics))
	if a.Bus.Sink == SinkRedis {
		chain.Add(validateSection("redis", &a.Redis))
	}
	return chain.Err()
}

func validateSection(name string, section any) error {
	err := validate.Struct(section)
	if err == nil {
		return nil
	}
	appErr := errors.NewConfig(fmt.Sprintf("invalid %s settings", name)).WithInnerError(err)
	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			appErr.WithDetail(fe.Namespace(), fe.Tag())
		}
	}
	return appErr
}

// Apply copies the settings onto b.
func (s BusSettings) Apply(b *event.Builder) *event.Builder {
	return b.CatchPanics(s.CatchPanics).Tracing(s.Tracing)
}

// Sinks is the metrics sink built from configuration together with the
// resources it owns.
type Sinks struct {
	Sink event.MetricsSink
	// Collector is set when the sink records into an in-process collector.
	Collector *metrics.Collector
	closers   []func() error
}

// Close releases the sink and any redis client it opened.
func (s *Sinks) Close() error {
	chain := errors.NewErrorChain()
	for i := len(s.closers) - 1; i >= 0; i-- {
		chain.Add(s.closers[i]())
	}
	s.closers = nil
	return chain.Err()
}

// BuildSinks constructs the sink named by a.Bus.Sink. The redis sink opens a
// client and pings it, so ctx bounds that connection attempt.
func (a *AppConfig) BuildSinks(ctx context.Context, logger logging.Logger) (*Sinks, error) {
	if logger == nil {
		logger = logging.Named("metrics")
	}
	out := &Sinks{}

	switch a.Bus.Sink {
	case SinkNoop, "":
		out.Sink = event.NoopMetricsSink{}
		return out, nil
	case SinkCollector:
		cs := metrics.NewCollectorSink(nil)
		out.Collector = cs.Collector()
		out.Sink = cs
	case SinkLog:
		out.Sink = metrics.NewLogSink(logger)
	case SinkMulti:
		cs := metrics.NewCollectorSink(nil)
		out.Collector = cs.Collector()
		out.Sink = metrics.NewMultiSink(cs, metrics.NewLogSink(logger))
	case SinkRedis:
		client, err := redis_client.NewRedis(ctx, a.Redis, logger.Named("redis"))
		if err != nil {
			return nil, err
		}
		out.closers = append(out.closers, client.Close)
		rs := metrics.NewRedisSink(client, a.Metrics.Redis, logger.Named("redis"))
		out.closers = append(out.closers, rs.Close)
		out.Sink = rs
	default:
		return nil, errors.NewConfig("unknown metrics sink: " + a.Bus.Sink).WithDetail("sink", a.Bus.Sink)
	}

	if a.Metrics.Async {
		async := metrics.NewAsyncSink(out.Sink, a.Metrics.AsyncBuffer, a.Metrics.AsyncWorkers, logger.Named("async"))
		out.closers = append(out.closers, async.Close)
		out.Sink = async
	}
	return out, nil
}

// NewBus builds a bus from the settings and sinks.
func (a *AppConfig) NewBus(sinks *Sinks, logger logging.Logger) *event.Bus {
	b := a.Bus.Apply(event.NewBuilder()).Logger(logger)
	if sinks != nil {
		b.MetricsSink(sinks.Sink)
	}
	return b.Build()
}
