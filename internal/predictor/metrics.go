package predictor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	predictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queuecast_predictions_total",
			Help: "Total number of wait-time predictions by adjustment branch and historical specificity",
		},
		[]string{"adjustment", "specificity"},
	)

	predictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "queuecast_prediction_duration_seconds",
			Help:    "Wait-time prediction pipeline duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	predictedMinutes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "queuecast_predicted_minutes",
			Help:    "Distribution of final predicted wait times in minutes",
			Buckets: []float64{5, 10, 15, 20, 30, 45, 60, 90, 120, 180},
		},
	)
)

func observePrediction(result *Result, elapsed time.Duration) {
	predictionsTotal.WithLabelValues(result.Adjustment, result.Specificity).Inc()
	predictionDuration.Observe(elapsed.Seconds())
	predictedMinutes.Observe(result.PredictedMinutes)
}
