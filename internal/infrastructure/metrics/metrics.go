package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "billboard_ws_connections_active",
		Help: "Number of websocket clients currently connected.",
	})

	BroadcastsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billboard_ws_broadcasts_total",
		Help: "Events broadcast to a room, by event name.",
	}, []string{"event"})

	DroppedSendsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billboard_ws_dropped_sends_total",
		Help: "Per-client sends dropped because the client buffer was full.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
