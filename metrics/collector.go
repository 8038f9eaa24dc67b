package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// MetricType 指标类型
type MetricType string

const (
	TypeCounter   MetricType = "counter"
	TypeGauge     MetricType = "gauge"
	TypeHistogram MetricType = "histogram"
)

// historySize bounds the samples kept per histogram.
const historySize = 128

// Metric 单个指标的快照
type Metric struct {
	Name      string            `json:"name"`
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Count     uint64            `json:"count,omitempty"`
	Sum       float64           `json:"sum,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
	History   []float64         `json:"history,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// Collector 内存指标收集器，并发安全
type Collector struct {
	mu      sync.RWMutex
	metrics map[string]*Metric
}

// NewCollector 创建指标收集器
func NewCollector() *Collector {
	return &Collector{metrics: make(map[string]*Metric)}
}

// IncCounter 计数器加一
func (c *Collector) IncCounter(name string, labels map[string]string) {
	c.AddCounter(name, 1, labels)
}

// AddCounter 计数器累加
func (c *Collector) AddCounter(name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(name, TypeCounter, labels)
	m.Value += value
	m.Timestamp = time.Now().Unix()
}

// SetGauge 设置仪表值
func (c *Collector) SetGauge(name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(name, TypeGauge, labels)
	m.Value = value
	m.Timestamp = time.Now().Unix()
}

// ObserveHistogram 记录一次观测值；Value 为最近一次观测
func (c *Collector) ObserveHistogram(name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(name, TypeHistogram, labels)
	m.Value = value
	m.Count++
	m.Sum += value
	m.History = append(m.History, value)
	if len(m.History) > historySize {
		m.History = m.History[len(m.History)-historySize:]
	}
	m.Timestamp = time.Now().Unix()
}

func (c *Collector) getOrCreate(name string, typ MetricType, labels map[string]string) *Metric {
	key := buildKey(name, labels)
	if m, ok := c.metrics[key]; ok {
		return m
	}
	m := &Metric{Name: name, Type: typ, Labels: copyLabels(labels)}
	c.metrics[key] = m
	return m
}

// GetMetric 获取单个指标的副本，不存在时返回 nil
func (c *Collector) GetMetric(name string, labels map[string]string) *Metric {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.metrics[buildKey(name, labels)]
	if !ok {
		return nil
	}
	return m.clone()
}

// Value 返回指标当前值，不存在时为 0
func (c *Collector) Value(name string, labels map[string]string) float64 {
	if m := c.GetMetric(name, labels); m != nil {
		return m.Value
	}
	return 0
}

// Snapshot 按 key 排序返回全部指标副本
func (c *Collector) Snapshot() []*Metric {
	c.mu.RLock()
	keys := make([]string, 0, len(c.metrics))
	for k := range c.metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*Metric, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.metrics[k].clone())
	}
	c.mu.RUnlock()
	return out
}

// Reset 清空所有指标
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = make(map[string]*Metric)
}

func (m *Metric) clone() *Metric {
	cp := *m
	cp.Labels = copyLabels(m.Labels)
	if m.History != nil {
		cp.History = append([]float64(nil), m.History...)
	}
	return &cp
}

// buildKey 构建指标键，标签按名称排序保证稳定
func buildKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	var sb strings.Builder
	sb.WriteString(name)
	for _, k := range sortedLabelNames(labels) {
		sb.WriteString(":")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(labels[k])
	}
	return sb.String()
}

func sortedLabelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func copyLabels(labels map[string]string) map[string]string {
	if len(labels) == 0 {
		return nil
	}
	cp := make(map[string]string, len(labels))
	for k, v := range labels {
		cp[k] = v
	}
	return cp
}
