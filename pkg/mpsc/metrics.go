package mpsc

import (
	"iter"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/gochan/pkg/metrics"
)

// InstrumentedSender wraps a Sender with Prometheus metrics collection.
type InstrumentedSender[T any] struct {
	tx       *Sender[T]
	name     string
	registry *metrics.Registry
	enabled  bool
}

// InstrumentedReceiver wraps a Receiver with Prometheus metrics collection.
type InstrumentedReceiver[T any] struct {
	rx        *Receiver[T]
	name      string
	registry  *metrics.Registry
	enabled   bool
	lastBatch int64
}

// NewInstrumented creates a channel pair with metrics enabled, labeled with
// the given channel name.
func NewInstrumented[T any](name string) (*InstrumentedSender[T], *InstrumentedReceiver[T]) {
	// Use a separate registry for each metrics-enabled channel to avoid conflicts
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}

	return NewInstrumentedWithConfig[T](name, config)
}

// NewInstrumentedWithConfig creates a channel pair with custom metrics configuration.
func NewInstrumentedWithConfig[T any](name string, config metrics.Config) (*InstrumentedSender[T], *InstrumentedReceiver[T]) {
	tx, rx := New[T]()

	registry := metrics.DefaultRegistry
	if config.Registry != nil {
		registry = metrics.NewRegistry(config.Registry)
	}

	its := &InstrumentedSender[T]{
		tx:       tx,
		name:     name,
		registry: registry,
		enabled:  config.Enabled,
	}
	itr := &InstrumentedReceiver[T]{
		rx:       rx,
		name:     name,
		registry: registry,
		enabled:  config.Enabled,
	}

	its.updateMetrics()
	return its, itr
}

// updateMetrics updates the current state gauges.
func (is *InstrumentedSender[T]) updateMetrics() {
	if !is.enabled {
		return
	}

	stats := is.tx.Stats()
	is.registry.ChannelDepth.WithLabelValues(is.name).Set(float64(stats.QueueLen))
	is.registry.ChannelPeakDepth.WithLabelValues(is.name).Set(float64(stats.PeakQueueLen))
	is.registry.ChannelSenders.WithLabelValues(is.name).Set(float64(stats.Senders))
}

// Send enqueues a value and records it.
func (is *InstrumentedSender[T]) Send(value T) {
	is.tx.Send(value)

	if is.enabled {
		is.registry.ChannelSends.WithLabelValues(is.name).Inc()
		is.updateMetrics()
	}
}

// Clone returns a new instrumented sender sharing the channel, its name, and
// its registry.
func (is *InstrumentedSender[T]) Clone() *InstrumentedSender[T] {
	clone := &InstrumentedSender[T]{
		tx:       is.tx.Clone(),
		name:     is.name,
		registry: is.registry,
		enabled:  is.enabled,
	}
	clone.updateMetrics()
	return clone
}

// Close releases this sender handle.
func (is *InstrumentedSender[T]) Close() error {
	err := is.tx.Close()
	is.updateMetrics()
	return err
}

// Len returns the number of values waiting in the shared queue.
func (is *InstrumentedSender[T]) Len() int {
	return is.tx.Len()
}

// Stats returns a snapshot of channel activity.
func (is *InstrumentedSender[T]) Stats() Stats {
	return is.tx.Stats()
}

// EnableMetrics enables metrics collection.
func (is *InstrumentedSender[T]) EnableMetrics(config metrics.Config) error {
	is.enabled = config.Enabled

	if config.Registry != nil {
		is.registry = metrics.NewRegistry(config.Registry)
	}

	is.updateMetrics()
	return nil
}

// DisableMetrics disables metrics collection.
func (is *InstrumentedSender[T]) DisableMetrics() {
	is.enabled = false
}

// MetricsEnabled returns true if metrics are currently enabled.
func (is *InstrumentedSender[T]) MetricsEnabled() bool {
	return is.enabled
}

// updateMetrics updates the current state gauges and batch-drain counter.
func (ir *InstrumentedReceiver[T]) updateMetrics() {
	if !ir.enabled {
		return
	}

	stats := ir.rx.Stats()
	ir.registry.ChannelDepth.WithLabelValues(ir.name).Set(float64(stats.QueueLen))
	ir.registry.ChannelPeakDepth.WithLabelValues(ir.name).Set(float64(stats.PeakQueueLen))
	ir.registry.ChannelSenders.WithLabelValues(ir.name).Set(float64(stats.Senders))

	if delta := stats.BatchCount - ir.lastBatch; delta > 0 {
		ir.registry.ChannelBatchDrains.WithLabelValues(ir.name).Add(float64(delta))
		ir.lastBatch = stats.BatchCount
	}
}

// Recv returns the next value, recording how long the call blocked.
func (ir *InstrumentedReceiver[T]) Recv() (T, bool) {
	start := time.Now()
	value, ok := ir.rx.Recv()

	if ir.enabled {
		ir.registry.RecvWaitTime.WithLabelValues(ir.name).Observe(time.Since(start).Seconds())
		if ok {
			ir.registry.ChannelReceives.WithLabelValues(ir.name).Inc()
		}
		ir.updateMetrics()
	}

	return value, ok
}

// TryRecv is a non-blocking Recv.
func (ir *InstrumentedReceiver[T]) TryRecv() (T, bool) {
	value, ok := ir.rx.TryRecv()

	if ir.enabled {
		if ok {
			ir.registry.ChannelReceives.WithLabelValues(ir.name).Inc()
		}
		ir.updateMetrics()
	}

	return value, ok
}

// All returns a single-use iterator over the remaining values, in send order.
func (ir *InstrumentedReceiver[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := ir.Recv()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Len returns the number of values waiting in the shared queue.
func (ir *InstrumentedReceiver[T]) Len() int {
	return ir.rx.Len()
}

// Buffered returns the number of values in the read-ahead buffer.
func (ir *InstrumentedReceiver[T]) Buffered() int {
	return ir.rx.Buffered()
}

// Stats returns a snapshot of channel activity.
func (ir *InstrumentedReceiver[T]) Stats() Stats {
	return ir.rx.Stats()
}

// EnableMetrics enables metrics collection.
func (ir *InstrumentedReceiver[T]) EnableMetrics(config metrics.Config) error {
	ir.enabled = config.Enabled

	if config.Registry != nil {
		ir.registry = metrics.NewRegistry(config.Registry)
	}

	ir.updateMetrics()
	return nil
}

// DisableMetrics disables metrics collection.
func (ir *InstrumentedReceiver[T]) DisableMetrics() {
	ir.enabled = false
}

// MetricsEnabled returns true if metrics are currently enabled.
func (ir *InstrumentedReceiver[T]) MetricsEnabled() bool {
	return ir.enabled
}
