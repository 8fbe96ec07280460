package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics usa un registry propio (no el global) para poder instanciar
// más de un router en tests sin colisiones de registro.
type Metrics struct {
	registry *prometheus.Registry

	FeedingsLogged   prometheus.Counter
	FeedingsRejected *prometheus.CounterVec
	LowStockEvents   prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		FeedingsLogged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedings_logged_total",
			Help: "Feedings admitted and recorded.",
		}),
		FeedingsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedings_rejected_total",
			Help: "Feedings rejected by admission control.",
		}, []string{"reason"}),
		LowStockEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "low_stock_events_total",
			Help: "Low-stock threshold crossings.",
		}),
	}

	reg.MustRegister(m.FeedingsLogged, m.FeedingsRejected, m.LowStockEvents)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
