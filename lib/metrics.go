package lib

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports tracker health counters. They are fed from snapshots and
// wrap counts when a pipeline reports, never from the per-packet path.
type Metrics struct {
	SlotsIssued    *prometheus.CounterVec
	StoreWraps     *prometheus.CounterVec
	PayloadPackets *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SlotsIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowtrack",
			Name:      "slots_issued_total",
			Help:      "Logical slots issued by the connection record stores.",
		}, []string{"pipeline", "role"}),
		StoreWraps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowtrack",
			Name:      "store_wraps_total",
			Help:      "Capacity wraparounds; each one invalidated the oldest tracked connections.",
		}, []string{"pipeline", "role"}),
		PayloadPackets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowtrack",
			Name:      "payload_packets_total",
			Help:      "Payload packets recorded on tracked connections.",
		}, []string{"pipeline", "direction"}),
	}
}

// StoreStats is what a store exposes for metrics publication.
type StoreStats interface {
	IssuedSlots() uint64
	Wraps() uint64
}

// StoreObserver publishes the growth of one store as counter deltas.
type StoreObserver struct {
	metrics   *Metrics
	pipeline  string
	role      string
	lastSlots uint64
	lastWraps uint64
}

func (m *Metrics) NewStoreObserver(pipeline PipelineId, role TcpRole) *StoreObserver {
	return &StoreObserver{
		metrics:  m,
		pipeline: pipeline.String(),
		role:     role.String(),
	}
}

// Observe publishes what happened to the store since the last call.
func (o *StoreObserver) Observe(store StoreStats) {
	slots, wraps := store.IssuedSlots(), store.Wraps()
	if d := slots - o.lastSlots; d > 0 {
		o.metrics.SlotsIssued.WithLabelValues(o.pipeline, o.role).Add(float64(d))
	}
	if d := wraps - o.lastWraps; d > 0 {
		o.metrics.StoreWraps.WithLabelValues(o.pipeline, o.role).Add(float64(d))
	}
	o.lastSlots, o.lastWraps = slots, wraps
}

// AddPayloadPackets publishes payload-packet totals gathered from counters.
func (m *Metrics) AddPayloadPackets(pipeline PipelineId, direction string, n uint64) {
	if n > 0 {
		m.PayloadPackets.WithLabelValues(pipeline.String(), direction).Add(float64(n))
	}
}
