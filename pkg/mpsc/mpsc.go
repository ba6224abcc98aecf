package mpsc

import (
	"iter"
	"sync"
	"sync/atomic"
)

// shared is the channel state jointly referenced by every Sender and the
// Receiver: the pending queue and the live-sender count, both guarded by mu.
type shared[T any] struct {
	mu      sync.Mutex
	avail   *sync.Cond
	queue   []T
	senders int
	peak    int

	// Counters updated outside the lock on the receiver fast path.
	sendCount  atomic.Int64
	recvCount  atomic.Int64
	batchCount atomic.Int64
}

// Stats holds a snapshot of channel activity.
type Stats struct {
	// SendCount is the total number of values sent.
	SendCount int64

	// ReceiveCount is the total number of values received.
	ReceiveCount int64

	// BatchCount is the number of batch drains performed by the receiver.
	BatchCount int64

	// QueueLen is the current number of values in the shared queue.
	QueueLen int

	// PeakQueueLen is the largest queue length observed so far.
	PeakQueueLen int

	// Senders is the current number of live Sender handles.
	Senders int
}

func (sh *shared[T]) stats() Stats {
	sh.mu.Lock()
	queueLen, peak, senders := len(sh.queue), sh.peak, sh.senders
	sh.mu.Unlock()

	return Stats{
		SendCount:    sh.sendCount.Load(),
		ReceiveCount: sh.recvCount.Load(),
		BatchCount:   sh.batchCount.Load(),
		QueueLen:     queueLen,
		PeakQueueLen: peak,
		Senders:      senders,
	}
}

// Sender is the sending half of a channel. It may be shared between
// goroutines or duplicated with Clone; every handle must be released with
// Close so the Receiver can observe end-of-stream.
type Sender[T any] struct {
	shared *shared[T]
	closed bool // guarded by shared.mu
}

// Receiver is the receiving half of a channel. It is a unique handle: there
// is exactly one per channel and only one goroutine may use it.
type Receiver[T any] struct {
	shared *shared[T]

	// buf is the read-ahead buffer: values already drained from the shared
	// queue, strictly older than anything still queued. Only the receiving
	// goroutine touches it, so it needs no locking.
	buf []T
}

// New creates a connected channel pair with one live Sender and an empty
// queue. The channel is unbounded: Send never blocks and never fails, and a
// producer that outruns the consumer grows the queue without limit.
func New[T any]() (*Sender[T], *Receiver[T]) {
	sh := &shared[T]{senders: 1}
	sh.avail = sync.NewCond(&sh.mu)
	return &Sender[T]{shared: sh}, &Receiver[T]{shared: sh}
}

// Send enqueues a value and wakes the receiver. It never blocks. Sending
// after the Receiver has been discarded is harmless: the value is enqueued
// and never read. Send panics if called after Close on this handle.
func (s *Sender[T]) Send(value T) {
	sh := s.shared

	sh.mu.Lock()
	if s.closed {
		sh.mu.Unlock()
		panic("mpsc: Send on closed Sender")
	}
	sh.queue = append(sh.queue, value)
	if n := len(sh.queue); n > sh.peak {
		sh.peak = n
	}
	sh.mu.Unlock()

	sh.sendCount.Add(1)

	// One parked receiver at most, so Signal suffices.
	sh.avail.Signal()
}

// Clone returns a new Sender sharing the same channel. The live-sender count
// is incremented under the lock before the handle is visible, so a concurrent
// last-sender Close can never race the count to zero while this handle
// exists. Clone panics if called after Close on this handle.
func (s *Sender[T]) Clone() *Sender[T] {
	sh := s.shared

	sh.mu.Lock()
	defer sh.mu.Unlock()

	if s.closed {
		panic("mpsc: Clone of closed Sender")
	}
	sh.senders++
	return &Sender[T]{shared: sh}
}

// Close releases this Sender handle. When the last handle is closed the
// receiver is woken once so a blocked Recv observes end-of-stream instead of
// waiting forever. Close is idempotent per handle and always returns nil; the
// error return exists to satisfy io.Closer.
func (s *Sender[T]) Close() error {
	sh := s.shared

	sh.mu.Lock()
	if s.closed {
		sh.mu.Unlock()
		return nil
	}
	s.closed = true
	sh.senders--
	last := sh.senders == 0
	sh.mu.Unlock()

	if last {
		sh.avail.Signal()
	}
	return nil
}

// Len returns the number of values waiting in the shared queue. It does not
// include values already drained into the receiver's read-ahead buffer.
func (s *Sender[T]) Len() int {
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()
	return len(s.shared.queue)
}

// Stats returns a snapshot of channel activity.
func (s *Sender[T]) Stats() Stats {
	return s.shared.stats()
}

// Recv returns the next value in global send order. It reports false only
// when every Sender has been closed and all sent values have been received;
// that state is terminal. Recv blocks the calling goroutine until a value or
// end-of-stream is observable.
//
// When the read-ahead buffer is empty, Recv swaps the entire shared queue
// into it in one critical section, so N pending sends cost a single lock
// acquisition on the receive side.
func (r *Receiver[T]) Recv() (T, bool) {
	if len(r.buf) > 0 {
		return r.pop(), true
	}

	sh := r.shared
	sh.mu.Lock()
	for {
		if len(sh.queue) > 0 {
			sh.queue, r.buf = r.buf[:0], sh.queue
			sh.mu.Unlock()
			sh.batchCount.Add(1)
			return r.pop(), true
		}
		if sh.senders == 0 {
			sh.mu.Unlock()
			var zero T
			return zero, false
		}
		// Spurious wakeups are possible, so the predicate is re-checked
		// under the lock after every wait.
		sh.avail.Wait()
	}
}

// TryRecv is a non-blocking Recv. It reports false when no value is
// immediately available, whether because the queue is momentarily empty or
// because the stream has ended; use Recv to distinguish the two.
func (r *Receiver[T]) TryRecv() (T, bool) {
	if len(r.buf) > 0 {
		return r.pop(), true
	}

	sh := r.shared
	sh.mu.Lock()
	if len(sh.queue) > 0 {
		sh.queue, r.buf = r.buf[:0], sh.queue
		sh.mu.Unlock()
		sh.batchCount.Add(1)
		return r.pop(), true
	}
	sh.mu.Unlock()

	var zero T
	return zero, false
}

// All returns a single-use iterator over the remaining values, in send
// order. It terminates once every Sender has been closed and the queue has
// drained, and stays exhausted afterwards.
func (r *Receiver[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := r.Recv()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Len returns the number of values waiting in the shared queue.
func (r *Receiver[T]) Len() int {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	return len(r.shared.queue)
}

// Buffered returns the number of values in the read-ahead buffer, already
// drained from the shared queue but not yet returned by Recv.
func (r *Receiver[T]) Buffered() int {
	return len(r.buf)
}

// Stats returns a snapshot of channel activity.
func (r *Receiver[T]) Stats() Stats {
	return r.shared.stats()
}

// pop removes and returns the front of the read-ahead buffer, which must be
// non-empty.
func (r *Receiver[T]) pop() T {
	v := r.buf[0]
	var zero T
	r.buf[0] = zero // release the reference
	r.buf = r.buf[1:]
	r.shared.recvCount.Add(1)
	return v
}
