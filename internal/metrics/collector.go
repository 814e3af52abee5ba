package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// 会话指标
	sessionsActive   prometheus.Gauge
	sessionsTotal    *prometheus.CounterVec
	sessionDuration  prometheus.Histogram
	sessionTurnCount prometheus.Histogram

	// 轮次指标
	turnsTotal   *prometheus.CounterVec
	turnDuration *prometheus.HistogramVec

	// 工具指标
	toolCallsTotal   *prometheus.CounterVec
	toolCallDuration *prometheus.HistogramVec

	// Handoff 指标
	handoffsTotal *prometheus.CounterVec

	// 嵌套流程指标
	nestedTotal    *prometheus.CounterVec
	nestedDuration prometheus.Histogram

	logger *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// 会话指标
	c.sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of sessions currently running",
		},
	)

	c.sessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of finished sessions",
		},
		[]string{"reason", "status"},
	)

	c.sessionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Session wall-clock duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
	)

	c.sessionTurnCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_turns",
			Help:      "Number of turns per finished session",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		},
	)

	// 轮次指标
	c.turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Total number of actor turns",
		},
		[]string{"actor"},
	)

	c.turnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Actor turn duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"actor"},
	)

	// 工具指标
	c.toolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Total number of tool calls",
		},
		[]string{"tool", "status"},
	)

	c.toolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Tool call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	// Handoff 指标
	c.handoffsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handoffs_total",
			Help:      "Total number of control transfers between actors",
		},
		[]string{"from", "to"},
	)

	// 嵌套流程指标
	c.nestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nested_flows_total",
			Help:      "Total number of dispatched nested flows",
		},
		[]string{"trigger"},
	)

	c.nestedDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "nested_flow_duration_seconds",
			Help:      "Nested flow duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 会话指标记录
// =============================================================================

// SessionStarted 记录会话开始
func (c *Collector) SessionStarted() {
	c.sessionsActive.Inc()
}

// SessionEnded 记录会话结束
func (c *Collector) SessionEnded(reason string, failed bool, duration time.Duration) {
	status := "ok"
	if failed {
		status = "error"
	}
	c.sessionsActive.Dec()
	c.sessionsTotal.WithLabelValues(reason, status).Inc()
	c.sessionDuration.Observe(duration.Seconds())
}

// ObserveTurn 记录一次 actor 轮次
func (c *Collector) ObserveTurn(actor string, duration time.Duration) {
	c.turnsTotal.WithLabelValues(actor).Inc()
	c.turnDuration.WithLabelValues(actor).Observe(duration.Seconds())
}

// ObserveToolCall 记录一次工具调用
func (c *Collector) ObserveToolCall(tool string, duration time.Duration, failed bool) {
	status := "ok"
	if failed {
		status = "error"
	}
	c.toolCallsTotal.WithLabelValues(tool, status).Inc()
	c.toolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// ObserveHandoff 记录一次控制权转移
func (c *Collector) ObserveHandoff(from, to string) {
	c.handoffsTotal.WithLabelValues(from, to).Inc()
}

// ObserveNested 记录一次嵌套流程
func (c *Collector) ObserveNested(trigger string, steps int, duration time.Duration) {
	c.nestedTotal.WithLabelValues(trigger).Inc()
	c.nestedDuration.Observe(duration.Seconds())
}

// ObserveSessionTurns 记录会话总轮次
func (c *Collector) ObserveSessionTurns(turns int) {
	c.sessionTurnCount.Observe(float64(turns))
}
