package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks ADS-B checks
type Metrics struct {
	registry *prometheus.Registry

	checks        *prometheus.CounterVec
	aircraft      prometheus.Gauge
	fetchDuration prometheus.Histogram
}

// New creates the collectors on a dedicated registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adsbchecker_checks_total",
				Help: "Total number of OpenSky checks, by result",
			},
			[]string{"result"}, // "ok", "error"
		),
		aircraft: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "adsbchecker_aircraft_tracked",
				Help: "Number of aircraft returned by the last successful check",
			},
		),
		fetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "adsbchecker_fetch_duration_seconds",
				Help:    "Duration of OpenSky state requests",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),
	}

	m.registry.MustRegister(m.checks, m.aircraft, m.fetchDuration)

	return m
}

// Observe records one check that started at start
func (m *Metrics) Observe(start time.Time, aircraft int, err error) {
	m.fetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.checks.WithLabelValues("error").Inc()
		return
	}
	m.checks.WithLabelValues("ok").Inc()
	m.aircraft.Set(float64(aircraft))
}

// Handler exposes the registry for scraping
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
