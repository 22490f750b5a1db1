package gossipnet

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports the pipeline's stats-channel heartbeats as Prometheus
// gauges, alongside a running count of ContactInfo and Version records the
// logic stage forwards to the data channel (repeats of the same node count
// again).
type Metrics struct {
	registry        *prometheus.Registry
	receiverCounter prometheus.Gauge
	senderCounter   prometheus.Gauge
	logicCounter    prometheus.Gauge
	nodesDiscovered prometheus.Counter
}

// NewMetrics registers the pipeline's gauges and counters against a
// private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{registry: reg}
	m.receiverCounter = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gossip_receiver_counter",
		Help: "Datagrams read by the receiver stage",
	})
	m.senderCounter = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gossip_sender_counter",
		Help: "Datagrams written by the sender stage",
	})
	m.logicCounter = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gossip_logic_counter",
		Help: "Messages dispatched by the logic stage",
	})
	m.nodesDiscovered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gossip_nodes_discovered_total",
		Help: "Contact info and version records forwarded to the data channel",
	})

	reg.MustRegister(m.receiverCounter, m.senderCounter, m.logicCounter, m.nodesDiscovered)
	return m
}

// Observe updates the gauge matching a Stats heartbeat.
func (m *Metrics) Observe(s Stats) {
	switch s.ID {
	case StageReceiver:
		m.receiverCounter.Set(float64(s.Counter))
	case StageSender:
		m.senderCounter.Set(float64(s.Counter))
	case StageLogic:
		m.logicCounter.Set(float64(s.Counter))
	}
}

// NodeDiscovered increments the discovered-node counter.
func (m *Metrics) NodeDiscovered() { m.nodesDiscovered.Inc() }

// Handler returns the promhttp handler for this registry, so callers can
// mount it on their own router alongside other routes.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
