// If you are AI: Prometheus registrations for the core's hot-path
// counters: queue depth, repeat counts, subscriber gauges.

package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	QueueingBytes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "driftcast",
		Subsystem: "socket",
		Name:      "queueing_bytes",
		Help:      "Bytes currently awaiting flush on a socket's send queue.",
	}, []string{"socket_kind"})

	RTMFPRepeats = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "driftcast",
		Subsystem: "rtmfp",
		Name:      "repeats_total",
		Help:      "Count of RTMFP repeat (retransmission) submissions.",
	}, []string{"reason"})

	RTMFPRepeatDelay = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "driftcast",
		Subsystem: "rtmfp",
		Name:      "repeat_delay_ms",
		Help:      "Current repeat backoff delay in milliseconds, last observed.",
	})

	Subscribers = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "driftcast",
		Subsystem: "pubsub",
		Name:      "subscriptions",
		Help:      "Active subscriptions per publication.",
	}, []string{"publication"})

	Ejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "driftcast",
		Subsystem: "pubsub",
		Name:      "ejections_total",
		Help:      "Subscription ejections by reason.",
	}, []string{"reason"})

	Publications = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "driftcast",
		Subsystem: "pubsub",
		Name:      "publications",
		Help:      "Active publication count.",
	})
)

// Register adds all core collectors to reg. Call once at startup.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		QueueingBytes,
		RTMFPRepeats,
		RTMFPRepeatDelay,
		Subscribers,
		Ejections,
		Publications,
	)
}
