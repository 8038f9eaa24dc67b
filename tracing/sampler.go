package tracing

import "hash/fnv"

// Sampler decides whether a new trace is recorded.
type Sampler interface {
	ShouldSample(traceID string) bool
}

// AlwaysSampler always samples
type AlwaysSampler struct{}

func (AlwaysSampler) ShouldSample(string) bool { return true }

// NeverSampler never samples
type NeverSampler struct{}

func (NeverSampler) ShouldSample(string) bool { return false }

// TraceIDRatioBased samples a stable fraction of trace ids.
type TraceIDRatioBased struct {
	ratio float64
}

func NewTraceIDRatioBased(ratio float64) *TraceIDRatioBased {
	return &TraceIDRatioBased{ratio: ratio}
}

func (t *TraceIDRatioBased) ShouldSample(traceID string) bool {
	if t.ratio >= 1.0 {
		return true
	}
	if t.ratio <= 0.0 {
		return false
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(traceID))
	return h.Sum32()%10000 < uint32(t.ratio*10000)
}
