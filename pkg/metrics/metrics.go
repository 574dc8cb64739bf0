// Package metrics 基于Prometheus的指标收集
//
// 指标类型:
//   - Counter: 只增不减的累计值(请求数、借出次数、罚金总额)
//   - Gauge: 可增可减的瞬时值(处理中的请求数、熔断器状态)
//   - Histogram: 观测值分布(请求耗时、逾期天数)
//
// 使用示例:
//
//	metrics.InitMetrics()
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
//	metrics.RecordBorrow()
//
// 所有Record*函数在InitMetrics之前调用是空操作,单元测试无需初始化。
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once        sync.Once
	initialized bool

	// HTTP请求指标

	// HTTPRequestsTotal HTTP请求总数,标签:method、path(路由模板)、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 借阅业务指标

	// BorrowsTotal 借出成功次数
	BorrowsTotal prometheus.Counter

	// ReturnsTotal 归还成功次数,标签:late(true/false)
	ReturnsTotal *prometheus.CounterVec

	// FinesTotal 累计罚金
	FinesTotal prometheus.Counter

	// DaysLate 逾期天数分布(仅逾期归还)
	DaysLate prometheus.Histogram

	// LendingFailuresTotal 借还失败次数,标签:op(borrow/return)、kind(错误类别)
	LendingFailuresTotal *prometheus.CounterVec

	// InvariantViolationsTotal 不变量破坏次数,非0即需要人工介入
	InvariantViolationsTotal *prometheus.CounterVec

	// 缓存指标

	// CacheRequestsTotal 图书缓存查询次数,标签:result(hit/miss/error/stale)
	CacheRequestsTotal *prometheus.CounterVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态(0=CLOSED, 1=OPEN, 2=HALF_OPEN)
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数,标签:name、result(success/failure/rejected)
	CircuitBreakerRequests *prometheus.CounterVec

	// Saga指标

	// SagaExecutionsTotal Saga执行总数,标签:result(success/compensated/compensation_failed)
	SagaExecutionsTotal *prometheus.CounterVec

	// SagaExecutionDuration Saga执行耗时
	SagaExecutionDuration prometheus.Histogram

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数,标签:exchange、routing_key、result
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal 消息消费总数,标签:queue、result
	MessagesConsumedTotal *prometheus.CounterVec

	// MessageProcessingDuration 消息处理耗时
	MessageProcessingDuration prometheus.Histogram
)

// InitMetrics 注册全部指标到默认Registry,重复调用无副作用
func InitMetrics() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	BorrowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "library_borrows_total",
			Help: "借出成功次数",
		},
	)

	ReturnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_returns_total",
			Help: "归还成功次数",
		},
		[]string{"late"},
	)

	FinesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "library_fines_total",
			Help: "累计罚金",
		},
	)

	DaysLate = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "library_days_late",
			Help:    "逾期归还的逾期天数",
			Buckets: []float64{1, 3, 7, 14, 30, 90, 365},
		},
	)

	LendingFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_lending_failures_total",
			Help: "借还失败次数",
		},
		[]string{"op", "kind"},
	)

	InvariantViolationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_invariant_violations_total",
			Help: "不变量破坏次数",
		},
		[]string{"op"},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_cache_requests_total",
			Help: "图书缓存查询次数",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	SagaExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_executions_total",
			Help: "Saga执行总数",
		},
		[]string{"result"},
	)

	SagaExecutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "saga_execution_duration_seconds",
			Help:    "Saga执行耗时（秒）",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key", "result"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "消息消费总数",
		},
		[]string{"queue", "result"},
	)

	MessageProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "message_processing_duration_seconds",
			Help:    "消息处理耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
	)

	initialized = true
}

// Enabled 指标是否已初始化
func Enabled() bool {
	return initialized
}

// ==================== 便捷函数 ====================

// RequestStarted HTTP请求开始,返回结束时调用的函数
func RequestStarted() func() {
	if !initialized {
		return func() {}
	}
	HTTPRequestsInProgress.Inc()
	return HTTPRequestsInProgress.Dec
}

// RecordHTTPRequest 记录HTTP请求
func RecordHTTPRequest(method, path string, status int, d time.Duration) {
	if !initialized {
		return
	}
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordBorrow 记录一次借出
func RecordBorrow() {
	if !initialized {
		return
	}
	BorrowsTotal.Inc()
}

// RecordReturn 记录一次归还
func RecordReturn(late bool, daysLate int, fine int64) {
	if !initialized {
		return
	}
	ReturnsTotal.WithLabelValues(strconv.FormatBool(late)).Inc()
	if late {
		DaysLate.Observe(float64(daysLate))
		FinesTotal.Add(float64(fine))
	}
}

// RecordLendingFailure 记录借还失败
func RecordLendingFailure(op, kind string) {
	if !initialized {
		return
	}
	LendingFailuresTotal.WithLabelValues(op, kind).Inc()
}

// RecordInvariantViolation 记录不变量破坏
func RecordInvariantViolation(op string) {
	if !initialized {
		return
	}
	InvariantViolationsTotal.WithLabelValues(op).Inc()
}

// RecordCache 记录缓存结果(hit/miss/error/stale)
func RecordCache(result string) {
	if !initialized {
		return
	}
	CacheRequestsTotal.WithLabelValues(result).Inc()
}

// SetCircuitBreakerState 更新熔断器状态
func SetCircuitBreakerState(name string, state int) {
	if !initialized {
		return
	}
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreakerRequest 记录熔断器请求结果(success/failure/rejected)
func RecordCircuitBreakerRequest(name, result string) {
	if !initialized {
		return
	}
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordSaga 记录Saga执行
func RecordSaga(result string, d time.Duration) {
	if !initialized {
		return
	}
	SagaExecutionsTotal.WithLabelValues(result).Inc()
	SagaExecutionDuration.Observe(d.Seconds())
}

// RecordMessagePublished 记录消息发布结果
func RecordMessagePublished(exchange, routingKey, result string) {
	if !initialized {
		return
	}
	MessagesPublishedTotal.WithLabelValues(exchange, routingKey, result).Inc()
}

// RecordMessageConsumed 记录消息消费结果
func RecordMessageConsumed(queue, result string, d time.Duration) {
	if !initialized {
		return
	}
	MessagesConsumedTotal.WithLabelValues(queue, result).Inc()
	MessageProcessingDuration.Observe(d.Seconds())
}
