package concurrency

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zenterm/zenbus/logging"
)

func TestTaskQueue_RunsAllTasks(t *testing.T) {
	q := NewTaskQueue(16, nil)
	q.Start(4)

	var n atomic.Int32
	for i := 0; i < 100; i++ {
		assert.True(t, q.Submit(func() { n.Add(1) }))
	}
	q.Stop()

	assert.Equal(t, int32(100), n.Load())
}

func TestTaskQueue_PanicDoesNotKillWorker(t *testing.T) {
	q := NewTaskQueue(4, nil)
	q.Start(1)

	var ran atomic.Bool
	q.Submit(func() { panic("sink exploded") })
	q.Submit(func() { ran.Store(true) })
	q.Stop()

	assert.True(t, ran.Load())
	assert.Equal(t, uint64(1), q.Panicked())
}

func TestTaskQueue_LogsRecoveredPanic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	q := NewTaskQueue(1, logging.FromZap(zap.New(core)))
	q.Start(1)

	q.Submit(func() { panic("flush exploded") })
	q.Stop()

	entries := logs.FilterMessage("task panicked").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "flush exploded", fields["panic"])
	assert.NotEmpty(t, fields["stack"])
}

func TestTaskQueue_TrySubmitDropsWhenFull(t *testing.T) {
	q := NewTaskQueue(1, nil)

	block := make(chan struct{})
	var started sync.WaitGroup
	started.Add(1)
	q.Start(1)
	q.Submit(func() {
		started.Done()
		<-block
	})
	started.Wait()

	assert.True(t, q.TrySubmit(func() {}))
	assert.False(t, q.TrySubmit(func() {}))
	assert.Equal(t, uint64(1), q.Dropped())

	close(block)
	q.Stop()
}

func TestTaskQueue_SubmitAfterStop(t *testing.T) {
	q := NewTaskQueue(1, nil)
	q.Start(1)
	q.Stop()
	q.Stop()

	assert.False(t, q.Submit(func() {}))
	assert.False(t, q.TrySubmit(func() {}))
}
