package feeder

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts delivered messages per endpoint and outcome.
type Metrics struct {
	messages *prometheus.CounterVec
}

// NewMetrics creates the feeder metrics and registers them with reg. A nil
// registerer leaves the metrics unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mockspec",
			Name:      "messages_total",
			Help:      "Messages delivered to mock endpoints by outcome.",
		}, []string{"endpoint", "outcome"}),
	}
	if reg != nil {
		if err := reg.Register(m.messages); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(endpoint string, outcome Outcome) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(endpoint, string(outcome)).Inc()
}
