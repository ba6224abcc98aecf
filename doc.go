/*
Package gochan provides an unbounded multi-producer, single-consumer channel
for in-process message passing, with optional Prometheus instrumentation and
scheduled statistics reporting.

Channel (pkg/mpsc):
  - mpsc: Unbounded MPSC channel with batched receiver-side draining

Observability:
  - metrics: Prometheus instrumentation for channel activity
  - monitor: Cron-scheduled statistics reporting

Example usage:

	import "github.com/vnykmshr/gochan/pkg/mpsc"

	tx, rx := mpsc.New[int]()

	go func() {
		defer tx.Close()
		tx.Send(42)
	}()

	for v := range rx.All() {
		fmt.Println(v)
	}
*/
package gochan
