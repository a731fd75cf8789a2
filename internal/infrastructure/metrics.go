package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the dashboard backend.
type Metrics struct {
	DatasetLoads   *prometheus.CounterVec
	DatasetRecords *prometheus.GaugeVec
	RenderRequests *prometheus.CounterVec
}

// NewMetrics registers the dashboard instruments on a registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DatasetLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ouvipanel_dataset_loads_total",
			Help: "Dataset load attempts by source name and outcome.",
		}, []string{"dataset", "outcome"}),
		DatasetRecords: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ouvipanel_dataset_records",
			Help: "Records in the last successful load, by source name and dated/undated.",
		}, []string{"dataset", "dated"}),
		RenderRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ouvipanel_render_requests_total",
			Help: "Render requests by endpoint and filter status.",
		}, []string{"endpoint", "status"}),
	}
}
