package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videoproc_frames_extracted_total",
		Help: "Total number of frames decoded from input videos",
	})

	FramesProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videoproc_frames_processed_total",
		Help: "Total number of frames transformed, by operation",
	}, []string{"operation"})

	VideosTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videoproc_videos_total",
		Help: "Total number of videos handled, by outcome",
	}, []string{"outcome"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "videoproc_stage_duration_seconds",
		Help:    "Duration of each processing stage",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
	}, []string{"stage"})
)
