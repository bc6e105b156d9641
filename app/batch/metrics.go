package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podlens_batches_total",
		Help: "Number of batch analysis runs started.",
	})

	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "podlens_analyses_total",
		Help: "Number of per-video analysis outcomes by status.",
	}, []string{"status"})
)
