package metrics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/zenterm/zenbus/event"
	"github.com/zenterm/zenbus/logging"
)

// RedisSinkConfig configures RedisSink.
type RedisSinkConfig struct {
	// HashKey is the redis hash the counters are accumulated in.
	HashKey string `mapstructure:"hash-key" default:"zenbus:metrics"`
	// FlushEvery triggers a background flush after this many buffered
	// increments. Zero disables count-based flushing.
	FlushEvery int `mapstructure:"flush-every" default:"512"`
	// FlushInterval flushes periodically. Zero disables the ticker.
	FlushInterval time.Duration `mapstructure:"flush-interval" default:"5s"`
	// Timeout bounds each flush round-trip.
	Timeout time.Duration `mapstructure:"timeout" default:"2s"`
}

// flushFunc writes accumulated deltas to a hash.
type flushFunc func(ctx context.Context, hashKey string, deltas map[string]int64) error

// RedisSink buffers counters in memory and writes them to a redis hash with
// one HINCRBY per field inside a MULTI/EXEC transaction. Recording never touches the network.
//
// Hash fields are "<metric>|<key>" and "<metric>|<key>|<result>".
type RedisSink struct {
	cfg    RedisSinkConfig
	flush  flushFunc
	logger logging.Logger

	mu      sync.Mutex
	pending map[string]int64
	count   int

	flushing atomic.Bool
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewRedisSink creates a sink writing through client.
func NewRedisSink(client redis.Cmdable, cfg RedisSinkConfig, logger logging.Logger) *RedisSink {
	return newRedisSink(txFlush(client), cfg, logger)
}

func newRedisSink(flush flushFunc, cfg RedisSinkConfig, logger logging.Logger) *RedisSink {
	if cfg.HashKey == "" {
		cfg.HashKey = "zenbus:metrics"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if logger == nil {
		logger = logging.Named("metrics.redis")
	}

	s := &RedisSink{
		cfg:     cfg,
		flush:   flush,
		logger:  logger,
		pending: make(map[string]int64),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if cfg.FlushInterval > 0 {
		go s.loop()
	} else {
		close(s.done)
	}
	return s
}

// txFlush wraps the batch in MULTI/EXEC. Nothing is applied unless EXEC
// reaches the server.
func txFlush(client redis.Cmdable) flushFunc {
	return func(ctx context.Context, hashKey string, deltas map[string]int64) error {
		_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for field, delta := range deltas {
				pipe.HIncrBy(ctx, hashKey, field, delta)
			}
			return nil
		})
		return err
	}
}

func (s *RedisSink) OnEmit(key string, handlerCount int) {
	s.add(MetricEmits+"|"+key, 1)
	s.add(MetricHandlersPerEmit+"|"+key, int64(handlerCount))
}

func (s *RedisSink) OnHandlerResult(key, subscriptionID string, result event.HandlerResult) {
	s.add(MetricHandlerResults+"|"+key+"|"+result.Kind.String(), 1)
}

func (s *RedisSink) OnPanic(key, subscriptionID, message string) {
	s.add(MetricHandlerPanics+"|"+key, 1)
}

func (s *RedisSink) add(field string, delta int64) {
	s.mu.Lock()
	s.pending[field] += delta
	s.count++
	trigger := s.cfg.FlushEvery > 0 && s.count >= s.cfg.FlushEvery
	s.mu.Unlock()

	if trigger && s.flushing.CompareAndSwap(false, true) {
		go func() {
			defer s.flushing.Store(false)
			s.flushLogged()
		}()
	}
}

// Pending returns a copy of the unflushed deltas.
func (s *RedisSink) Pending() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.pending))
	for k, v := range s.pending {
		out[k] = v
	}
	return out
}

// Flush writes buffered deltas. On failure the deltas are merged back so
// the next flush retries them.
func (s *RedisSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return nil
	}
	batch := s.pending
	s.pending = make(map[string]int64, len(batch))
	s.count = 0
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if err := s.flush(ctx, s.cfg.HashKey, batch); err != nil {
		s.mu.Lock()
		for k, v := range batch {
			s.pending[k] += v
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *RedisSink) flushLogged() {
	if err := s.Flush(context.Background()); err != nil {
		s.logger.Warn("redis metrics flush failed", zap.String("hash", s.cfg.HashKey), zap.Error(err))
	}
}

func (s *RedisSink) loop() {
	defer close(s.done)
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.flushLogged()
		case <-s.stop:
			return
		}
	}
}

// Close stops the flush ticker and performs a final flush.
func (s *RedisSink) Close() error {
	s.once.Do(func() { close(s.stop) })
	<-s.done
	return s.Flush(context.Background())
}

var _ event.MetricsSink = (*RedisSink)(nil)
