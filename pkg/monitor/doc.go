/*
Package monitor provides cron-scheduled statistics reporting for mpsc channels.

A Reporter holds a set of named channels and samples their Stats on a schedule
expressed either as a cron expression (with a seconds field) or a descriptor
like "@every 15s". Each sample updates the Prometheus gauges for queue depth,
peak depth, and live senders, and can additionally be delivered to a callback.

Because an unbounded channel accepts every Send, queue growth is the one
operational signal worth watching; the reporter exists to make that growth
visible without instrumenting every Send and Recv call.

Basic Usage:

	tx, rx := mpsc.New[Event]()

	reporter, err := monitor.NewWithConfig(monitor.Config{
		Schedule: "@every 5s",
		Metrics:  metrics.Config{Enabled: true},
	})
	if err != nil {
		log.Fatal(err)
	}

	reporter.Register("events", rx.Stats)

	if err := reporter.Start(); err != nil {
		log.Fatal(err)
	}
	defer reporter.Stop()

Callbacks:

	reporter, _ := monitor.NewWithConfig(monitor.Config{
		Schedule: "@every 30s",
		OnSample: func(s monitor.Sample) {
			if s.Stats.QueueLen > 10000 {
				log.Printf("channel %s backlog: %d", s.Channel, s.Stats.QueueLen)
			}
		},
	})

Lifecycle:

Start begins scheduled sampling; Stop halts it and waits for an in-flight run
to complete. A stopped reporter is terminal, mirroring the single-pass
lifecycle of the channels it watches. SampleNow triggers one pass on demand,
which is also convenient in tests.
*/
package monitor
