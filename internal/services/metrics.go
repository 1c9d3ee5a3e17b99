package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocumentsProcessed counts finished documents.
	// Labels: status (completed, failed)
	DocumentsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resume_ranker",
			Subsystem: "worker",
			Name:      "documents_processed_total",
			Help:      "Total number of processed résumé documents by outcome",
		},
		[]string{"status"},
	)

	DocumentProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "resume_ranker",
			Subsystem: "worker",
			Name:      "document_processing_duration_seconds",
			Help:      "Time from dequeue to stored candidate profile",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// EmbeddingRequests counts calls to the embedding provider.
	// Labels: result (success, error)
	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resume_ranker",
			Subsystem: "embedding",
			Name:      "requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"result"},
	)

	RankingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "resume_ranker",
			Subsystem: "ranking",
			Name:      "duration_seconds",
			Help:      "Duration of ranking requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	RankedCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "resume_ranker",
			Subsystem: "ranking",
			Name:      "candidates",
			Help:      "Number of candidates per ranking request",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// RankingErrors counts rejected ranking inputs.
	// Labels: reason (empty_input, dimension_mismatch)
	RankingErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resume_ranker",
			Subsystem: "ranking",
			Name:      "errors_total",
			Help:      "Total number of ranking requests rejected by validation",
		},
		[]string{"reason"},
	)
)
