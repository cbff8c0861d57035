package fanout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Ingested      prometheus.Counter
	Delivered     prometheus.Counter
	DroppedSubs   prometheus.Counter
	ActiveSubs    prometheus.Gauge
	SnapshotsSent prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Ingested: factory.NewCounter(prometheus.CounterOpts{
			Name: "fanout_events_ingested_total",
			Help: "Change events handed to the fan-out manager.",
		}),
		Delivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "fanout_events_delivered_total",
			Help: "Change events delivered to subscriptions.",
		}),
		DroppedSubs: factory.NewCounter(prometheus.CounterOpts{
			Name: "fanout_subscriptions_dropped_total",
			Help: "Subscriptions torn down because their buffer filled.",
		}),
		ActiveSubs: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fanout_active_subscriptions",
			Help: "Currently registered subscriptions.",
		}),
		SnapshotsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "fanout_initial_snapshots_total",
			Help: "Initial snapshot sets served on subscribe.",
		}),
	}
}
