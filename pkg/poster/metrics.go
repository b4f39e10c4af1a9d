package poster

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus metrics for the widget.
type widgetMetrics struct {
	uploadsTotal *prometheus.CounterVec
	uploadBytes  prometheus.Histogram
}

var (
	globalMetrics     *widgetMetrics
	globalMetricsOnce sync.Once
)

// getMetrics returns the singleton metrics, registering them on the default
// registry on first use.
func getMetrics() *widgetMetrics {
	globalMetricsOnce.Do(func() {
		globalMetrics = initMetrics(prometheus.DefaultRegisterer)
	})
	return globalMetrics
}

func initMetrics(registry prometheus.Registerer) *widgetMetrics {
	factory := promauto.With(registry)

	return &widgetMetrics{
		uploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "posterbox",
			Subsystem: "widget",
			Name:      "uploads_total",
			Help:      "Poster upload attempts by input channel and result",
		}, []string{"channel", "result"}),

		uploadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "posterbox",
			Subsystem: "widget",
			Name:      "upload_bytes",
			Help:      "Size in bytes of successfully uploaded posters",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
	}
}

// Metric result labels.
const (
	resultSuccess  = "success"
	resultRejected = "rejected"
	resultError    = "error"
	resultTooLarge = "too_large"
)
