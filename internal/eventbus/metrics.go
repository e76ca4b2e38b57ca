package eventbus

import "github.com/prometheus/client_golang/prometheus"

const (
	dropReasonFiltered = "filtered"
	dropReasonStopped  = "stopped"
)

// Metrics holds the Prometheus collectors shared by every bus in the process.
// Series are labelled with the bus name. A nil *Metrics records nothing.
type Metrics struct {
	postedTotal    *prometheus.CounterVec
	deliveredTotal *prometheus.CounterVec
	droppedTotal   *prometheus.CounterVec
	failuresTotal  *prometheus.CounterVec
	queueDepth     *prometheus.GaugeVec
}

// NewMetrics creates the bus collectors and registers them with reg.
//
// Returns:
//   - *Metrics: Collectors ready to pass in Options.Metrics
//   - error: If registration fails (for example, a duplicate registration)
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		postedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planteur",
			Subsystem: "bus",
			Name:      "posted_total",
			Help:      "Events accepted into the queue.",
		}, []string{"bus"}),
		deliveredTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planteur",
			Subsystem: "bus",
			Name:      "delivered_total",
			Help:      "Events handed to every registered handler.",
		}, []string{"bus"}),
		droppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planteur",
			Subsystem: "bus",
			Name:      "dropped_total",
			Help:      "Events dropped before delivery.",
		}, []string{"bus", "reason"}),
		failuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planteur",
			Subsystem: "bus",
			Name:      "handler_failures_total",
			Help:      "Handler calls that returned an error or panicked.",
		}, []string{"bus", "handler"}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "planteur",
			Subsystem: "bus",
			Name:      "queue_depth",
			Help:      "Events waiting in the queue at the last dequeue.",
		}, []string{"bus"}),
	}

	for _, c := range []prometheus.Collector{
		m.postedTotal, m.deliveredTotal, m.droppedTotal, m.failuresTotal, m.queueDepth,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) posted(bus string) {
	if m != nil {
		m.postedTotal.WithLabelValues(bus).Inc()
	}
}

func (m *Metrics) delivered(bus string) {
	if m != nil {
		m.deliveredTotal.WithLabelValues(bus).Inc()
	}
}

func (m *Metrics) dropped(bus, reason string) {
	if m != nil {
		m.droppedTotal.WithLabelValues(bus, reason).Inc()
	}
}

func (m *Metrics) handlerFailed(bus, handler string) {
	if m != nil {
		m.failuresTotal.WithLabelValues(bus, handler).Inc()
	}
}

func (m *Metrics) setDepth(bus string, n int) {
	if m != nil {
		m.queueDepth.WithLabelValues(bus).Set(float64(n))
	}
}
