// Package metrics provides Prometheus instrumentation for gochan components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for gochan components.
type Registry struct {
	// Channel Metrics
	ChannelSends       *prometheus.CounterVec
	ChannelReceives    *prometheus.CounterVec
	ChannelBatchDrains *prometheus.CounterVec
	ChannelDepth       *prometheus.GaugeVec
	ChannelPeakDepth   *prometheus.GaugeVec
	ChannelSenders     *prometheus.GaugeVec
	RecvWaitTime       *prometheus.HistogramVec

	// Monitor Metrics
	MonitorSamples *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by gochan components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		// Channel Metrics
		ChannelSends: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gochan",
				Subsystem: "channel",
				Name:      "sends_total",
				Help:      "Total number of values sent",
			},
			[]string{"channel_name"},
		),

		ChannelReceives: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gochan",
				Subsystem: "channel",
				Name:      "receives_total",
				Help:      "Total number of values received",
			},
			[]string{"channel_name"},
		),

		ChannelBatchDrains: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gochan",
				Subsystem: "channel",
				Name:      "batch_drains_total",
				Help:      "Total number of whole-queue drains into the read-ahead buffer",
			},
			[]string{"channel_name"},
		),

		ChannelDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gochan",
				Subsystem: "channel",
				Name:      "depth",
				Help:      "Number of values currently queued",
			},
			[]string{"channel_name"},
		),

		ChannelPeakDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gochan",
				Subsystem: "channel",
				Name:      "peak_depth",
				Help:      "Largest queue depth observed",
			},
			[]string{"channel_name"},
		),

		ChannelSenders: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gochan",
				Subsystem: "channel",
				Name:      "live_senders",
				Help:      "Number of live sender handles",
			},
			[]string{"channel_name"},
		),

		RecvWaitTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gochan",
				Subsystem: "channel",
				Name:      "recv_wait_duration_seconds",
				Help:      "Time spent blocked in Recv",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"channel_name"},
		),

		// Monitor Metrics
		MonitorSamples: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gochan",
				Subsystem: "monitor",
				Name:      "samples_total",
				Help:      "Total number of channel stats samples taken",
			},
			[]string{"channel_name"},
		),
	}
}
