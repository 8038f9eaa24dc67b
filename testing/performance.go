package testing

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// BenchmarkResult represents a measured run.
type BenchmarkResult struct {
	Name        string
	Duration    time.Duration
	Operations  int64
	Failures    int64
	Allocations uint64
}

func (br *BenchmarkResult) String() string {
	return fmt.Sprintf("%s: Duration=%v, Ops=%d, Failures=%d, Allocs=%d",
		br.Name, br.Duration, br.Operations, br.Failures, br.Allocations)
}

// Throughput returns operations per second
func (br *BenchmarkResult) Throughput() float64 {
	if br.Duration == 0 {
		return 0
	}
	return float64(br.Operations) / br.Duration.Seconds()
}

// Latency returns average latency per operation
func (br *BenchmarkResult) Latency() time.Duration {
	if br.Operations == 0 {
		return 0
	}
	return time.Duration(br.Duration.Nanoseconds() / br.Operations)
}

// Measure runs fn iterations times on the calling goroutine.
func Measure(name string, iterations int, fn func() error) *BenchmarkResult {
	return MeasureConcurrent(name, 1, iterations, fn)
}

// MeasureConcurrent runs fn iterations times on each of workers goroutines.
func MeasureConcurrent(name string, workers, iterations int, fn func() error) *BenchmarkResult {
	if workers <= 0 {
		workers = 1
	}

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)

	var ops, failures atomic.Int64
	var wg sync.WaitGroup
	start := time.Now()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				if err := fn(); err != nil {
					failures.Add(1)
					continue
				}
				ops.Add(1)
			}
		}()
	}
	wg.Wait()
	duration := time.Since(start)

	runtime.ReadMemStats(&after)
	return &BenchmarkResult{
		Name:        name,
		Duration:    duration,
		Operations:  ops.Load(),
		Failures:    failures.Load(),
		Allocations: after.Mallocs - before.Mallocs,
	}
}
