package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	exchanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zusictl",
			Subsystem: "exchange",
			Name:      "total",
			Help:      "Request/acknowledgement exchanges by outcome.",
		},
		[]string{"exchange", "outcome"},
	)
	exchangeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zusictl",
			Subsystem: "exchange",
			Name:      "duration_seconds",
			Help:      "Exchange duration from send to validated acknowledgement.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"exchange"},
	)
	messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zusictl",
			Subsystem: "stream",
			Name:      "messages_total",
			Help:      "Complete messages moved over the Zusi stream.",
		},
		[]string{"direction"},
	)
	streamBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zusictl",
			Subsystem: "stream",
			Name:      "bytes_total",
			Help:      "Bytes moved over the Zusi stream.",
		},
		[]string{"direction"},
	)
	readings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zusictl",
			Subsystem: "data",
			Name:      "readings_total",
			Help:      "Values received in data pushes.",
		},
		[]string{"command"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(exchanges, exchangeDuration, messages, streamBytes, readings)
	})
}

func RecordExchange(exchange, outcome string, duration time.Duration) {
	RegisterMetrics()
	exchanges.WithLabelValues(exchange, outcome).Inc()
	exchangeDuration.WithLabelValues(exchange).Observe(duration.Seconds())
}

// RecordTraffic adds stream counter deltas.
func RecordTraffic(messagesIn, messagesOut, bytesIn, bytesOut uint64) {
	RegisterMetrics()
	messages.WithLabelValues("in").Add(float64(messagesIn))
	messages.WithLabelValues("out").Add(float64(messagesOut))
	streamBytes.WithLabelValues("in").Add(float64(bytesIn))
	streamBytes.WithLabelValues("out").Add(float64(bytesOut))
}

func RecordReadings(command string, n int) {
	RegisterMetrics()
	readings.WithLabelValues(command).Add(float64(n))
}
