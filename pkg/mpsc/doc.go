/*
Package mpsc provides an unbounded multi-producer, single-consumer channel
built on a mutex, a condition variable, and a receiver-side read-ahead buffer.

Unlike Go's built-in channels, an mpsc channel has no capacity bound: Send
never blocks and never fails, which makes it suitable for decoupling bursty
producers from a single consumer without sizing a buffer up front. The cost of
that freedom is explicit: there is no backpressure, so a producer that
permanently outruns the consumer grows the queue without limit.

Key Components:
  - Sender: cloneable sending handle, safe for concurrent use
  - Receiver: unique receiving handle with blocking Recv and an iterator view
  - Batched draining: the receiver swaps the whole pending queue into a
    private buffer in one critical section

Basic Usage:

	tx, rx := mpsc.New[int]()

	go func() {
		defer tx.Close()
		for i := 0; i < 10; i++ {
			tx.Send(i)
		}
	}()

	for {
		v, ok := rx.Recv()
		if !ok {
			break // every sender closed, queue drained
		}
		process(v)
	}

Multiple Producers:

Clone duplicates the sending handle. The channel delivers values in the order
the senders' Send calls acquired the lock (one global FIFO across all
senders); there is no per-sender ordering beyond that.

	tx, rx := mpsc.New[string]()

	for i := 0; i < workers; i++ {
		tx := tx.Clone()
		go func() {
			defer tx.Close()
			produce(tx)
		}()
	}
	tx.Close() // release the original handle

	for v := range rx.All() {
		consume(v)
	}

Sender Lifecycle:

Every Sender handle, including the one returned by New, must be closed.
Recv reports end-of-stream only after the live-sender count reaches zero and
the queue has drained; a forgotten handle keeps the receiver blocked. Close
is idempotent per handle, and Send or Clone on a closed handle panics, in the
same spirit as sending on a closed Go channel.

Receiving:

Recv blocks the calling goroutine; it is the only blocking operation in the
package. TryRecv polls without blocking. All adapts the receiver to a
range-over-func iterator:

	for v := range rx.All() {
		if shouldStop(v) {
			break // remaining values stay available via Recv
		}
	}

The Receiver is a unique handle and must be driven by a single goroutine.
Fan-out to multiple consumers is out of scope; layer your own dispatch on top
if you need it.

Batched Draining:

When its private buffer is empty, the receiver takes the lock once and swaps
the entire pending queue into the buffer, then serves subsequent Recv calls
from the buffer without any locking. With a fast producer this amortizes lock
acquisition across the whole batch. The swap moves whole snapshots, so FIFO
order is preserved exactly.

Dropped Receiver:

Discarding the Receiver does not invalidate the channel: Send continues to
succeed and the values are simply never read. If the producer needs to learn
about a departed consumer, that signal must come from application-level
coordination; the channel deliberately does not provide one.

Observability:

Stats returns activity counters (sends, receives, batch drains, queue depth).
For Prometheus integration see NewInstrumented and the metrics package; for
scheduled stats reporting see the monitor package.
*/
package mpsc
