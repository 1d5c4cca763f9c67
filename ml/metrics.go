package ml

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	predictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classroom_ml_predictions_total",
		Help: "Total number of single-case predictions served.",
	})
	batchRowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classroom_ml_batch_rows_total",
		Help: "Total number of rows classified through batch prediction.",
	})
	digestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classroom_ml_digests_total",
		Help: "Total number of digest operations that triggered a retrain.",
	})
	defaultedFieldsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classroom_ml_defaulted_fields_total",
		Help: "Total number of raw fields that fell back to pipeline defaults.",
	})
	trainingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "classroom_ml_training_duration_seconds",
		Help:    "Duration of one full retrain over the history corpus.",
		Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
	})
	knowledgePoints = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "classroom_ml_knowledge_points",
		Help: "Rows currently held in the training corpus.",
	})
)
