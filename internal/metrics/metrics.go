package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "watchparty"

type Metrics struct {
	RoomsActive      prometheus.GaugeFunc
	SessionsActive   prometheus.Gauge
	RoomsCreated     prometheus.Counter
	RoomsRemoved     prometheus.Counter
	EventsBroadcast  *prometheus.CounterVec
	DeliveriesFailed prometheus.Counter
	StatusUpdates    *prometheus.CounterVec
	registry         *prometheus.Registry
}

// New registers the collectors on a fresh registry. roomsCount is sampled on every scrape.
func New(roomsCount func() int) *Metrics {
	m := &Metrics{
		RoomsActive: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_active",
			Help:      "Number of rooms currently held in memory.",
		}, func() float64 {
			return float64(roomsCount())
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of attached live connections.",
		}),
		RoomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Rooms created since start.",
		}),
		RoomsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_removed_total",
			Help:      "Rooms removed after becoming empty.",
		}),
		EventsBroadcast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_broadcast_total",
			Help:      "Events fanned out to rooms, by event type.",
		}, []string{"type"}),
		DeliveriesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_failed_total",
			Help:      "Per-member deliveries that failed and were dropped.",
		}),
		StatusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_updates_total",
			Help:      "Playback status reports, by outcome.",
		}, []string{"outcome"}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.RoomsActive,
		m.SessionsActive,
		m.RoomsCreated,
		m.RoomsRemoved,
		m.EventsBroadcast,
		m.DeliveriesFailed,
		m.StatusUpdates,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
