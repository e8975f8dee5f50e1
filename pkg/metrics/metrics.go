package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "screenroom_rooms_created_total",
		Help: "Rooms created since process start.",
	})
	RoomsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "screenroom_rooms_deleted_total",
		Help: "Rooms deleted after their master left.",
	})
	LiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "screenroom_rooms_live",
		Help: "Rooms currently held in the registry.",
	})
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "screenroom_ws_connections",
		Help: "Websocket connections currently bound to a room.",
	})
	EventsBroadcast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "screenroom_events_broadcast_total",
		Help: "Events fanned out to room members, by event type.",
	}, []string{"event"})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
