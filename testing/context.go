package testing

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zenterm/zenbus/event"
	"github.com/zenterm/zenbus/logging"
)

// TestContext bundles the pieces most bus tests need: a deadline context, an
// observed logger and a recording sink.
type TestContext struct {
	t      testing.TB
	ctx    context.Context
	cancel context.CancelFunc

	Logger logging.Logger
	Logs   *observer.ObservedLogs
	Sink   *RecordingSink
}

// NewTestContext creates a context that is cancelled when the test ends.
func NewTestContext(t testing.TB) *TestContext {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	core, logs := observer.New(zapcore.DebugLevel)

	tc := &TestContext{
		t:      t,
		ctx:    ctx,
		cancel: cancel,
		Logger: logging.FromZap(zap.New(core)),
		Logs:   logs,
		Sink:   NewRecordingSink(),
	}
	t.Cleanup(cancel)
	return tc
}

func (tc *TestContext) Context() context.Context {
	return tc.ctx
}

// Builder returns an event.Builder wired to the observed logger and the
// recording sink.
func (tc *TestContext) Builder() *event.Builder {
	return event.NewBuilder().Logger(tc.Logger).MetricsSink(tc.Sink)
}

// Bus builds a bus with default policies.
func (tc *TestContext) Bus() *event.Bus {
	return tc.Builder().Build()
}

// LogCount returns how many entries were logged with msg.
func (tc *TestContext) LogCount(msg string) int {
	return tc.Logs.FilterMessage(msg).Len()
}
