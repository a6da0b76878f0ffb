package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const prefix = "image_converter_"

var jobsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: prefix + "jobs_total",
		Help: "Number of jobs that reached a terminal status",
	},
	[]string{"status"},
)

var imagesProcessed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: prefix + "images_processed_total",
		Help: "Number of images run through the transform pipeline",
	},
	[]string{"result"},
)

var imageDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    prefix + "image_duration_seconds",
		Help:    "Time taken to transform one image",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	},
)

var activeJobs = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: prefix + "active_jobs",
		Help: "Jobs currently being processed",
	},
)

func RecordJobFinished(status string) {
	jobsTotal.WithLabelValues(status).Inc()
}

func RecordImage(success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	imagesProcessed.WithLabelValues(result).Inc()
	imageDuration.Observe(duration.Seconds())
}

func JobStarted() {
	activeJobs.Inc()
}

func JobStopped() {
	activeJobs.Dec()
}
