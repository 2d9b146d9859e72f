package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ProbeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "relay_probe_total", Help: "Relay health probes by outcome"},
		[]string{"status"},
	)
	ProbeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_probe_duration_seconds",
			Help:    "Relay health probe latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
	)
	RegistrySaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "relay_registry_saves_total", Help: "Registry save attempts"},
		[]string{"result"},
	)
	RegistrySize = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "relay_registry_size", Help: "Relays in the last saved registry"},
	)
	PublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "relay_publish_total", Help: "Registry publish attempts"},
		[]string{"pushed"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "relay_admin_http_requests_total", Help: "Admin API requests"},
		[]string{"route", "code"},
	)
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(ProbeTotal, ProbeDuration)
		prometheus.MustRegister(RegistrySaves, RegistrySize, PublishTotal, HTTPRequests)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
