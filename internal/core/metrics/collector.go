package metrics

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-cgconn/pkg/lib/log"
)

var logger = log.Logger("core/metrics")

// Collector 基于 Prometheus 的 Reporter
type Collector struct {
	attempts prometheus.Counter
	results  *prometheus.CounterVec
	duration prometheus.Histogram
	data     *prometheus.CounterVec

	attemptCount atomic.Int64
	mu           sync.Mutex
	resultCount  map[string]int64
	dataCount    map[string]int64
}

var _ Reporter = (*Collector)(nil)

// NewCollector 创建指标收集器并注册到 reg
//
// 已注册过同名指标时复用已有的收集器。
func NewCollector(namespace string, reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_attempts_total",
			Help:      "Number of control connection attempts.",
		}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_results_total",
			Help:      "Control connection results by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "connect_duration_seconds",
			Help:      "Time from connect start to result.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		data: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_connections_total",
			Help:      "Data connection results by outcome.",
		}, []string{"outcome"}),
		resultCount: make(map[string]int64),
		dataCount:   make(map[string]int64),
	}

	if reg == nil {
		return c, nil
	}
	var err error
	c.attempts, err = register(reg, c.attempts)
	if err != nil {
		return nil, err
	}
	if c.results, err = register(reg, c.results); err != nil {
		return nil, err
	}
	if c.duration, err = register(reg, c.duration); err != nil {
		return nil, err
	}
	if c.data, err = register(reg, c.data); err != nil {
		return nil, err
	}
	return c, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ConnectAttempt 实现 Reporter
func (c *Collector) ConnectAttempt() {
	c.attempts.Inc()
	c.attemptCount.Add(1)
}

// ConnectResult 实现 Reporter
func (c *Collector) ConnectResult(err error, elapsed time.Duration) {
	outcome := Outcome(err)
	c.results.WithLabelValues(outcome).Inc()
	c.duration.Observe(elapsed.Seconds())

	c.mu.Lock()
	c.resultCount[outcome]++
	c.mu.Unlock()

	if outcome == OutcomeUnknown {
		logger.Debug("未分类的连接错误", "err", err)
	}
}

// DataConnectionResult 实现 Reporter
func (c *Collector) DataConnectionResult(err error) {
	outcome := Outcome(err)
	c.data.WithLabelValues(outcome).Inc()

	c.mu.Lock()
	c.dataCount[outcome]++
	c.mu.Unlock()
}

// Snapshot 实现 Reporter
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Attempts:        c.attemptCount.Load(),
		Results:         make(map[string]int64, len(c.resultCount)),
		DataConnections: make(map[string]int64, len(c.dataCount)),
	}
	for k, v := range c.resultCount {
		s.Results[k] = v
	}
	for k, v := range c.dataCount {
		s.DataConnections[k] = v
	}
	return s
}
