package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CacheMetrics 追踪快照缓存链路的核心指标。
type CacheMetrics struct {
	FetchDuration *prometheus.HistogramVec
	CacheHit      *prometheus.CounterVec
	CacheMiss     *prometheus.CounterVec
	CacheEvict    *prometheus.CounterVec
}

var (
	// DefaultCacheMetrics 全局共享实例。
	DefaultCacheMetrics *CacheMetrics

	fetchDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.2, 0.3, 0.5, 1, 2}
)

func init() {
	DefaultCacheMetrics = NewCacheMetrics("ringside")
}

// NewCacheMetricsWithRegistry 创建 CacheMetrics,允许 tests 注入自定义 registry。
func NewCacheMetricsWithRegistry(namespace string, reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		reg = GetRegisterer()
	}
	factory := promauto.With(reg)

	return &CacheMetrics{
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "snapshot_fetch_duration_seconds",
				Help:      "Latency histogram for scorecard snapshot fetches on cache miss",
				Buckets:   fetchDurationBuckets,
			},
			[]string{"service", "outcome"},
		),

		CacheHit: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_cache_hits_total",
				Help:      "Count of snapshot cache hits by service",
			},
			[]string{"service"},
		),

		CacheMiss: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_cache_miss_total",
				Help:      "Count of snapshot cache misses by service",
			},
			[]string{"service"},
		),

		CacheEvict: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_cache_evict_total",
				Help:      "Count of snapshot cache evictions grouped by service and reason",
			},
			[]string{"service", "reason"},
		),
	}
}

// NewCacheMetrics 创建默认 registry 的 CacheMetrics。
func NewCacheMetrics(namespace string) *CacheMetrics {
	return NewCacheMetricsWithRegistry(namespace, GetRegisterer())
}

// ObserveFetchDuration 记录缓存未命中后的快照拉取耗时。
func (m *CacheMetrics) ObserveFetchDuration(service, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	service = normalizeServiceName(service)
	if outcome == "" {
		outcome = "success"
	}
	m.FetchDuration.WithLabelValues(service, outcome).Observe(duration.Seconds())
}

// IncCacheHit 增加缓存命中次数。
func (m *CacheMetrics) IncCacheHit(service string) {
	if m == nil {
		return
	}
	m.CacheHit.WithLabelValues(normalizeServiceName(service)).Inc()
}

// IncCacheMiss 增加缓存未命中次数。
func (m *CacheMetrics) IncCacheMiss(service string) {
	if m == nil {
		return
	}
	m.CacheMiss.WithLabelValues(normalizeServiceName(service)).Inc()
}

// IncCacheEvicted 记录缓存剔除次数。
func (m *CacheMetrics) IncCacheEvicted(service, reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.CacheEvict.WithLabelValues(normalizeServiceName(service), reason).Inc()
}
