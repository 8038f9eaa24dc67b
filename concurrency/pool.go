package concurrency

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/zenterm/zenbus/errors"
	"github.com/zenterm/zenbus/logging"
)

// TaskQueue runs submitted funcs on a fixed set of workers. A panicking
// task is logged and does not take its worker down.
type TaskQueue struct {
	queue   chan func()
	wg      sync.WaitGroup
	logger  logging.Logger
	stopped atomic.Bool
	once    sync.Once
	mu      sync.RWMutex

	dropped  atomic.Uint64
	panicked atomic.Uint64
}

// NewTaskQueue creates a queue with the given buffer size.
func NewTaskQueue(bufferSize int, logger logging.Logger) *TaskQueue {
	if bufferSize < 0 {
		bufferSize = 0
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &TaskQueue{
		queue:  make(chan func(), bufferSize),
		logger: logger,
	}
}

// Start launches workers goroutines.
func (t *TaskQueue) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		t.wg.Add(1)
		go t.worker()
	}
}

func (t *TaskQueue) worker() {
	defer t.wg.Done()
	for task := range t.queue {
		t.run(task)
	}
}

func (t *TaskQueue) run(task func()) {
	var err error
	defer func() {
		if err == nil {
			return
		}
		t.panicked.Add(1)
		fields := []zap.Field{zap.String("panic", err.Error())}
		var appErr *errors.AppError
		if errors.As(err, &appErr) {
			fields = append(fields, zap.Strings("stack", appErr.Stack))
		}
		t.logger.Error("task panicked", fields...)
	}()
	defer errors.Recover(&err)
	task()
}

// Submit enqueues task, blocking while the buffer is full. It returns false
// once the queue has been stopped.
func (t *TaskQueue) Submit(task func()) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.stopped.Load() {
		return false
	}
	t.queue <- task
	return true
}

// TrySubmit enqueues task without blocking. A full or stopped queue drops
// the task and counts it.
func (t *TaskQueue) TrySubmit(task func()) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.stopped.Load() {
		t.dropped.Add(1)
		return false
	}
	select {
	case t.queue <- task:
		return true
	default:
		t.dropped.Add(1)
		return false
	}
}

// Stop closes the queue and waits for queued tasks to finish. Safe to call
// more than once.
func (t *TaskQueue) Stop() {
	t.once.Do(func() {
		t.mu.Lock()
		t.stopped.Store(true)
		close(t.queue)
		t.mu.Unlock()
	})
	t.wg.Wait()
}

// Dropped returns how many tasks TrySubmit discarded.
func (t *TaskQueue) Dropped() uint64 {
	return t.dropped.Load()
}

// Panicked returns how many tasks panicked.
func (t *TaskQueue) Panicked() uint64 {
	return t.panicked.Load()
}
