// internal/matching/metrics.go

package matching

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	likesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_likes_total",
			Help: "Total number of like actions processed",
		},
	)

	mutualMatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_mutual_matches_total",
			Help: "Total number of pairs that turned mutual",
		},
	)

	rejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_rejections_total",
			Help: "Total number of rejection cooldowns created or refreshed",
		},
	)

	compatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_compatibility_scores",
			Help:    "Distribution of compatibility scores at mutual-match time",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	suggestionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "matching_suggestion_duration_seconds",
			Help: "Time spent building a suggestion feed",
		},
	)

	suggestionResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_suggestion_results",
			Help:    "Number of candidates returned per suggestion request",
			Buckets: prometheus.LinearBuckets(0, 5, 11),
		},
	)
)

func RecordLike() {
	likesTotal.Inc()
}

func RecordMutualMatch() {
	mutualMatchesTotal.Inc()
}

func RecordRejection() {
	rejectionsTotal.Inc()
}

func RecordCompatibilityScore(score float64) {
	compatibilityScores.Observe(score)
}

func ObserveSuggestionDuration(d time.Duration) {
	suggestionDuration.Observe(d.Seconds())
}

func ObserveSuggestionCount(n int) {
	suggestionResults.Observe(float64(n))
}
