package cart

import "github.com/prometheus/client_golang/prometheus"

// Metrics is optional; a nil *Metrics records nothing.
type Metrics struct {
	Operations      *prometheus.CounterVec
	PersistFailures prometheus.Counter
	Items           prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cart_operations_total",
				Help: "Cart operations that changed the cart",
			},
			[]string{"op"},
		),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cart_persist_failures_total",
			Help: "Failed writes of the cart to its durable slot",
		}),
		Items: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cart_items",
			Help: "Total quantity currently in the cart",
		}),
	}
	reg.MustRegister(m.Operations, m.PersistFailures, m.Items)
	return m
}

func (m *Metrics) observe(op string, count int) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op).Inc()
	m.Items.Set(float64(count))
}

func (m *Metrics) persistFailed() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}
