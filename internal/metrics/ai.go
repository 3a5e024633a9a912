package metrics

import "github.com/prometheus/client_golang/prometheus"

// AI provider Prometheus metrics.
var (
	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "draftzero",
			Name:      "ai_requests_total",
			Help:      "Total number of AI provider requests",
		},
		[]string{"provider", "model", "kind", "status"}, // kind: "embedding" / "explanation"
	)

	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "draftzero",
			Name:      "ai_request_duration_seconds",
			Help:      "AI provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model", "kind"},
	)

	AITokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "draftzero",
			Name:      "ai_tokens_total",
			Help:      "Total AI tokens consumed",
		},
		[]string{"provider", "model", "kind"},
	)

	AIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "draftzero",
			Name:      "ai_errors_total",
			Help:      "Total AI provider errors",
		},
		[]string{"provider", "model", "kind", "error_type"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "draftzero",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ExplainerCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "draftzero",
			Name:      "explainer_cache_total",
			Help:      "Linkage explanation cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	AIBudgetCallsRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "draftzero",
			Name:      "ai_budget_calls_remaining",
			Help:      "Remaining AI call budget for the last checked user",
		},
		[]string{"period"},
	)
)

var aiMetricsRegistered bool

// RegisterAIMetrics registers Prometheus AI metrics. Must be called once from main.
func RegisterAIMetrics() {
	if aiMetricsRegistered {
		return
	}
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(AITokensTotal)
	prometheus.MustRegister(AIErrorsTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(ExplainerCacheTotal)
	prometheus.MustRegister(AIBudgetCallsRemaining)
	aiMetricsRegistered = true
}
