// Package metrics exposes Prometheus collectors for the relay.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_connections_active",
		Help: "Open WebSocket connections.",
	})
	ClientsRegistered = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_clients_registered",
		Help: "Connections with a registered client record.",
	})
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_rooms_active",
		Help: "Rooms known to the directory, empty ones included.",
	})
	FramesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_frames_total",
		Help: "Inbound frames by type.",
	}, []string{"type"})
	FramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_frames_dropped_total",
		Help: "Frames dropped on send due to backpressure.",
	})
	EvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_evictions_total",
		Help: "Connections closed by the liveness monitor.",
	})
)

// Handler exposes Prometheus metrics at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
