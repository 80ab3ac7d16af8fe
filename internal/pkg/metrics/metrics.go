package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// 所有指标在声明时即完成构造，未注册前也可安全调用。
var (
	// GraphQLOperationsTotal GraphQL 操作计数，按操作类型与结果区分。
	GraphQLOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hitmeup_graphql_operations_total",
		Help: "GraphQL operations by operation type and result.",
	}, []string{"operation", "result"})

	// GraphQLOperationDuration GraphQL 请求耗时。
	GraphQLOperationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hitmeup_graphql_operation_duration_seconds",
		Help:    "GraphQL request latency.",
		Buckets: prometheus.DefBuckets,
	})

	// RegistrationsTotal 注册结果计数: success / invalid / failed。
	RegistrationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hitmeup_registrations_total",
		Help: "User registrations by outcome.",
	}, []string{"result"})

	// SyncChangesTotal 用户变更投影结果: processed / failed / parked。
	SyncChangesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hitmeup_user_sync_changes_total",
		Help: "Outbox user changes projected into the document store.",
	}, []string{"operation", "result"})

	// SyncPendingChanges 最近一次轮询时待处理的变更数。
	SyncPendingChanges = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hitmeup_user_sync_pending_changes",
		Help: "Pending outbox changes seen by the last relay poll.",
	})

	// RateLimitRejectedTotal 被限流拒绝的请求数。
	RateLimitRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hitmeup_rate_limit_rejected_total",
		Help: "Requests rejected by the per-client rate limiter.",
	}, []string{"route"})

	// RateLimitWaitDuration 等待令牌的耗时。
	RateLimitWaitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hitmeup_rate_limit_wait_seconds",
		Help:    "Time spent waiting for a rate limit token.",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	})

	// RateLimitTimeoutTotal 等待令牌超时次数。
	RateLimitTimeoutTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hitmeup_rate_limit_timeout_total",
		Help: "Rate limit waits aborted by context cancellation.",
	})

	// NotificationJobsTotal 站内通知投递任务结果。
	NotificationJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hitmeup_notification_jobs_total",
		Help: "In-app notification fan-out jobs by result.",
	}, []string{"result"})

	// QueueJobsTotal Worker Pool 任务结果，按任务类别（名称中冒号前的部分）区分。
	QueueJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hitmeup_queue_jobs_total",
		Help: "Worker pool jobs by kind and result.",
	}, []string{"kind", "result"})

	// WorkerPoolSize Worker Pool 大小。
	WorkerPoolSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hitmeup_worker_pool_size",
		Help: "Configured worker pool size.",
	})
)

var initOnce sync.Once

// InitMetrics 注册所有指标到默认 Registry，可重复调用。
func InitMetrics(workerPoolSize int) {
	initOnce.Do(func() {
		prometheus.MustRegister(
			GraphQLOperationsTotal,
			GraphQLOperationDuration,
			RegistrationsTotal,
			SyncChangesTotal,
			SyncPendingChanges,
			RateLimitRejectedTotal,
			RateLimitWaitDuration,
			RateLimitTimeoutTotal,
			NotificationJobsTotal,
			QueueJobsTotal,
			WorkerPoolSize,
		)
	})
	WorkerPoolSize.Set(float64(workerPoolSize))
}

// ObserveQueueJob 记录一个 Worker Pool 任务的结果，可直接作为 queue.Pool 的结果回调。
// 任务名形如 "notify:tagged"、"usersync:<uid>"，只取冒号前的类别作为标签。
func ObserveQueueJob(name string, err error) {
	kind, _, _ := strings.Cut(name, ":")
	result := "ok"
	if err != nil {
		result = "failed"
	}
	QueueJobsTotal.WithLabelValues(kind, result).Inc()
}
