package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval and account backend metrics.
var (
	CorpusDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_documents",
			Help:      "Number of documents in the loaded corpus",
		},
	)

	CorpusDimensions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_dimensions",
			Help:      "Embedding dimensionality of the loaded corpus",
		},
	)

	RetrievalDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Time spent ranking the corpus and assembling context",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	RetrievedDocuments = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieved_documents",
			Help:      "Number of passages returned per retrieval",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		},
	)

	RetrievalTopScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_top_score",
			Help:      "Cosine similarity of the best passage per retrieval",
			Buckets:   []float64{-0.5, 0, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
	)

	AccountRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_requests_total",
			Help:      "Total account backend calls",
		},
		[]string{"action", "status"},
	)

	AccountRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "account_request_duration_seconds",
			Help:      "Account backend call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"action"},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers corpus, retrieval and account metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(CorpusDocuments)
	prometheus.MustRegister(CorpusDimensions)
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(RetrievedDocuments)
	prometheus.MustRegister(RetrievalTopScore)
	prometheus.MustRegister(AccountRequestsTotal)
	prometheus.MustRegister(AccountRequestDuration)
	retrievalMetricsRegistered = true
}
