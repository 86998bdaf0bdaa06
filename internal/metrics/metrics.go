package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Datagrams counts every datagram pulled off the socket.
	Datagrams = promauto.NewCounter(prometheus.CounterOpts{
		Name: "panelwatch_datagrams_total",
		Help: "UDP datagrams received from the panel.",
	})

	// Events counts classified events by label.
	Events = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "panelwatch_events_total",
		Help: "Classified events by event label.",
	}, []string{"event"})

	// SinkErrors counts dropped batches by sink name.
	SinkErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "panelwatch_sink_errors_total",
		Help: "Batches dropped because a sink write failed.",
	}, []string{"sink"})

	// Alerts counts emitted open-zone alerts.
	Alerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "panelwatch_alerts_total",
		Help: "Open-zone alerts emitted.",
	})

	// OpenZones tracks zones currently open under at least one alert rule.
	OpenZones = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "panelwatch_open_zones",
		Help: "Zones currently tracked as open.",
	})
)

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve blocks serving /metrics on addr.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}
