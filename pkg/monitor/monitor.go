package monitor

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vnykmshr/gochan/pkg/common/errors"
	"github.com/vnykmshr/gochan/pkg/metrics"
	"github.com/vnykmshr/gochan/pkg/mpsc"
)

// Source samples the current statistics of one channel. Both ends of an mpsc
// channel expose a compatible Stats method.
type Source func() mpsc.Stats

// Sample is a single observation of one channel, delivered to OnSample.
type Sample struct {
	Channel string
	Stats   mpsc.Stats
	At      time.Time
}

// Config holds configuration for a Reporter.
type Config struct {
	// Schedule is a cron expression (with seconds) or a descriptor such as
	// "@every 15s" controlling how often channels are sampled.
	Schedule string

	// Metrics configures export of samples to Prometheus.
	Metrics metrics.Config

	// OnSample is called for every channel on every sampling run.
	OnSample func(Sample)
}

// DefaultConfig returns a default reporter configuration.
func DefaultConfig() Config {
	return Config{
		Schedule: "@every 15s",
		Metrics:  metrics.Config{Enabled: true},
	}
}

// Reporter periodically samples registered channels on a cron schedule and
// exports their statistics through a metrics registry.
type Reporter struct {
	mu       sync.Mutex
	cron     *cron.Cron
	sources  map[string]Source
	registry *metrics.Registry
	enabled  bool
	onSample func(Sample)
	running  bool
	stopped  bool
}

// New creates a reporter with the default configuration.
func New() (*Reporter, error) {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a reporter with the given configuration. The schedule
// is validated up front; an unparsable one is reported as a configuration
// error rather than surfacing later from the scheduler.
func NewWithConfig(config Config) (*Reporter, error) {
	if config.Schedule == "" {
		config.Schedule = DefaultConfig().Schedule
	}

	// Parser with seconds field and @descriptors, matching cron.Schedule below.
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(config.Schedule)
	if err != nil {
		return nil, errors.NewValidationError("monitor", "schedule", config.Schedule, err.Error()).
			WithHint("use a cron expression or a descriptor like @every 15s")
	}

	registry := metrics.DefaultRegistry
	if config.Metrics.Registry != nil {
		registry = metrics.NewRegistry(config.Metrics.Registry)
	}

	r := &Reporter{
		cron:     cron.New(cron.WithParser(parser)),
		sources:  make(map[string]Source),
		registry: registry,
		enabled:  config.Metrics.Enabled,
		onSample: config.OnSample,
	}
	r.cron.Schedule(schedule, cron.FuncJob(r.sample))

	return r, nil
}

// Register adds a channel to the sampling set under the given name. The name
// becomes the channel_name label on exported metrics.
func (r *Reporter) Register(name string, source Source) error {
	if source == nil {
		return errors.NewValidationError("monitor", "source", nil, "cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return errors.ErrClosed
	}
	if _, ok := r.sources[name]; ok {
		return errors.NewOperationError("monitor", "Register", errors.ErrAlreadyRegistered).
			WithContext("channel " + name)
	}

	r.sources[name] = source
	return nil
}

// Unregister removes a channel from the sampling set.
func (r *Reporter) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sources, name)
}

// Start begins scheduled sampling.
func (r *Reporter) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return errors.ErrClosed
	}
	if r.running {
		return errors.ErrAlreadyRunning
	}

	r.running = true
	r.cron.Start()
	return nil
}

// Stop halts scheduled sampling and waits for an in-flight run to finish.
// A stopped reporter cannot be restarted. Stop is idempotent.
func (r *Reporter) Stop() error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	r.running = false
	r.mu.Unlock()

	<-r.cron.Stop().Done()
	return nil
}

// Running returns true if scheduled sampling is active.
func (r *Reporter) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// SampleNow runs one sampling pass immediately, outside the schedule.
func (r *Reporter) SampleNow() {
	r.sample()
}

func (r *Reporter) sample() {
	r.mu.Lock()
	sources := make(map[string]Source, len(r.sources))
	for name, source := range r.sources {
		sources[name] = source
	}
	onSample := r.onSample
	r.mu.Unlock()

	now := time.Now()
	for name, source := range sources {
		stats := source()

		if r.enabled {
			r.registry.ChannelDepth.WithLabelValues(name).Set(float64(stats.QueueLen))
			r.registry.ChannelPeakDepth.WithLabelValues(name).Set(float64(stats.PeakQueueLen))
			r.registry.ChannelSenders.WithLabelValues(name).Set(float64(stats.Senders))
			r.registry.MonitorSamples.WithLabelValues(name).Inc()
		}

		if onSample != nil {
			onSample(Sample{Channel: name, Stats: stats, At: now})
		}
	}
}
