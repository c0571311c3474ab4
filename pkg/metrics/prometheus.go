package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"CrediTech/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	seriesLoads  *prometheus.CounterVec
	seriesPoints *prometheus.GaugeVec
	trainSeconds *prometheus.HistogramVec
	valLoss      *prometheus.GaugeVec
	assessments  *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New registers the collectors on reg, or on the default registry when reg is nil.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		seriesLoads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditech_series_loads_total",
				Help: "Category history loads by origin",
			},
			[]string{"category", "source"},
		),
		seriesPoints: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "creditech_series_points",
				Help: "Observations held for a category",
			},
			[]string{"category"},
		),
		trainSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "creditech_training_duration_seconds",
				Help:    "Model fit duration",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"category"},
		),
		valLoss: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "creditech_training_validation_loss",
				Help: "Validation loss of the last fit",
			},
			[]string{"category"},
		),
		assessments: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditech_risk_assessments_total",
				Help: "Risk assessments by classification",
			},
			[]string{"classification", "degraded"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditech_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "creditech_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordSeriesLoad(category string, source models.SeriesSource, points int) {
	r.seriesLoads.WithLabelValues(category, string(source)).Inc()
	r.seriesPoints.WithLabelValues(category).Set(float64(points))
}

func (r *Recorder) RecordTraining(category string, seconds, validationLoss float64) {
	r.trainSeconds.WithLabelValues(category).Observe(seconds)
	r.valLoss.WithLabelValues(category).Set(validationLoss)
}

func (r *Recorder) RecordAssessment(classification string, degraded bool) {
	d := "false"
	if degraded {
		d = "true"
	}
	r.assessments.WithLabelValues(classification, d).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
