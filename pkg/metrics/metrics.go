package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 意图识别计数
	IntentClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_intent_classified_total",
			Help: "Total number of messages classified, by intent and source",
		},
		[]string{"intent", "source"}, // source: command, phrase, completer, fallback
	)

	// 补全服务调用延迟（毫秒）
	CompleterCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_completer_call_latency_ms",
			Help:    "Completion service call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(50, 2, 10), // 50ms to ~25s
		},
		[]string{"provider", "status"},
	)

	// Domain API 调用延迟（秒）
	DomainAPIDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_domain_api_duration_seconds",
			Help:    "Domain API call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"operation", "status"},
	)

	// 分发结果计数
	DispatchItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_dispatch_items_total",
			Help: "Items handled by the dispatcher, by outcome",
		},
		[]string{"intent", "outcome"}, // outcome: succeeded, not_found, already_done, error
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 消息处理计数
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_messages_processed_total",
			Help: "Total number of inbound messages processed",
		},
		[]string{"status"}, // status: replied, duplicate, failed
	)
)

// RecordIntent 记录一次意图识别
func RecordIntent(intent, source string) {
	IntentClassified.WithLabelValues(intent, source).Inc()
}

// RecordCompleterLatency 记录补全服务调用延迟
func RecordCompleterLatency(provider, status string, duration time.Duration) {
	CompleterCallLatency.WithLabelValues(provider, status).Observe(float64(duration.Milliseconds()))
}

// RecordDomainAPIDuration 记录 Domain API 调用延迟
func RecordDomainAPIDuration(operation, status string, duration time.Duration) {
	DomainAPIDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// AddDispatchItems 按结果累加分发条目数
func AddDispatchItems(intent, outcome string, n int) {
	if n <= 0 {
		return
	}
	DispatchItems.WithLabelValues(intent, outcome).Add(float64(n))
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementMessagesProcessed 增加消息处理计数
func IncrementMessagesProcessed(status string) {
	MessagesProcessed.WithLabelValues(status).Inc()
}
