// File: internal/pkg/metrics/scoring_metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ScoringMetrics 打分业务指标收集器
type ScoringMetrics struct {
	// 正在轮询的对阵数（Gauge 类型，可增可减）
	WatchedBoutsTotal *prometheus.GaugeVec

	// 打分提交数（按结果分组：accepted/duplicate/rejected/failed）
	SubmissionsTotal *prometheus.CounterVec

	// 提交耗时直方图（含内部重试）
	SubmissionDuration *prometheus.HistogramVec

	// 记分卡轮询数（按阶段分组）
	PollsTotal *prometheus.CounterVec

	// 乐观合并数（按结局分组：confirmed/rolled_back）
	OptimisticMergesTotal *prometheus.CounterVec

	// 管理操作数（按动作分组）
	AdminActionsTotal *prometheus.CounterVec
}

var (
	// DefaultScoringMetrics 默认的业务指标实例
	DefaultScoringMetrics *ScoringMetrics
)

// SubmissionBuckets 是针对提交耗时优化的 buckets
// 提交含后端往返与有限次重试，预期 10ms-5s
// 单位：秒
var SubmissionBuckets = []float64{
	0.01, // 10ms
	0.05, // 50ms
	0.1,  // 100ms
	0.25, // 250ms
	0.5,  // 500ms
	1,    // 1s
	2.5,  // 2.5s
	5,    // 5s
}

// init 初始化默认指标
func init() {
	DefaultScoringMetrics = NewScoringMetrics("ringside")
}

// NewScoringMetrics 创建新的业务指标收集器
func NewScoringMetrics(namespace string) *ScoringMetrics {
	return NewScoringMetricsWithRegistry(namespace, GetRegisterer())
}

// NewScoringMetricsWithRegistry 创建新的业务指标收集器（使用自定义注册表）
func NewScoringMetricsWithRegistry(namespace string, registerer prometheus.Registerer) *ScoringMetrics {
	factory := promauto.With(registerer)

	return &ScoringMetrics{
		WatchedBoutsTotal: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "scoring",
				Name:      "watched_bouts_total",
				Help:      "Current number of bouts being polled",
			},
			[]string{"service"},
		),

		SubmissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scoring",
				Name:      "submissions_total",
				Help:      "Total number of score submissions by outcome (accepted/duplicate/rejected/failed)",
			},
			[]string{"outcome", "service"},
		),

		SubmissionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "scoring",
				Name:      "submission_duration_seconds",
				Help:      "Score submission duration in seconds, retries included",
				Buckets:   SubmissionBuckets,
			},
			[]string{"service"},
		),

		PollsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scoring",
				Name:      "polls_total",
				Help:      "Total number of scorecard polls by round phase",
			},
			[]string{"phase", "service"},
		),

		OptimisticMergesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scoring",
				Name:      "optimistic_merges_total",
				Help:      "Total number of optimistic merges by outcome (confirmed/rolled_back)",
			},
			[]string{"outcome", "service"},
		),

		AdminActionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scoring",
				Name:      "admin_actions_total",
				Help:      "Total number of admin round-state transitions by action",
			},
			[]string{"action", "service"},
		),
	}
}

// RecordSubmission 记录打分提交指标
//
// 参数:
//   - outcome: 提交结果 ("accepted", "duplicate", "rejected", "failed")
//   - duration: 提交耗时（含重试）
//   - service: 服务名称
func (m *ScoringMetrics) RecordSubmission(outcome string, duration time.Duration, service string) {
	service = normalizeServiceName(service)
	m.SubmissionsTotal.WithLabelValues(outcome, service).Inc()
	m.SubmissionDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// RecordPoll 记录一次记分卡轮询
func (m *ScoringMetrics) RecordPoll(phase, service string) {
	service = normalizeServiceName(service)
	m.PollsTotal.WithLabelValues(phase, service).Inc()
}

// RecordOptimisticMerge 记录乐观合并结局
//
// 参数:
//   - outcome: "confirmed" 后端确认，"rolled_back" 提交失败回滚
func (m *ScoringMetrics) RecordOptimisticMerge(outcome, service string) {
	service = normalizeServiceName(service)
	m.OptimisticMergesTotal.WithLabelValues(outcome, service).Inc()
}

// RecordAdminAction 记录管理操作
func (m *ScoringMetrics) RecordAdminAction(action, service string) {
	service = normalizeServiceName(service)
	m.AdminActionsTotal.WithLabelValues(action, service).Inc()
}

// SetWatchedBouts 设置当前轮询中的对阵数
func (m *ScoringMetrics) SetWatchedBouts(count int, service string) {
	service = normalizeServiceName(service)
	m.WatchedBoutsTotal.WithLabelValues(service).Set(float64(count))
}

// IncWatchedBouts 增加轮询对阵数
func (m *ScoringMetrics) IncWatchedBouts(service string) {
	service = normalizeServiceName(service)
	m.WatchedBoutsTotal.WithLabelValues(service).Inc()
}

// DecWatchedBouts 减少轮询对阵数
func (m *ScoringMetrics) DecWatchedBouts(service string) {
	service = normalizeServiceName(service)
	m.WatchedBoutsTotal.WithLabelValues(service).Dec()
}
