package mpsc

import (
	"sync"
	"testing"
	"time"

	"github.com/vnykmshr/gochan/internal/testutil"
)

func TestSendRecv(t *testing.T) {
	tx, rx := New[int]()

	go func() {
		defer tx.Close()
		tx.Send(10)
		tx.Send(12)
		tx.Send(13)
		tx.Send(14)
	}()

	for _, want := range []int{10, 12, 13, 14} {
		got, ok := rx.Recv()
		testutil.AssertEqual(t, ok, true)
		testutil.AssertEqual(t, got, want)
	}

	// All senders closed and queue drained: end-of-stream, permanently.
	_, ok := rx.Recv()
	testutil.AssertEqual(t, ok, false)
	_, ok = rx.Recv()
	testutil.AssertEqual(t, ok, false)
}

func TestSendAfterReceiverDiscarded(t *testing.T) {
	tx, rx := New[int]()
	_ = rx

	// No receiver will ever read this; Send must still succeed.
	tx.Send(1)
	testutil.AssertEqual(t, tx.Len(), 1)
	testutil.AssertNoError(t, tx.Close())
}

func TestRecvAfterImmediateClose(t *testing.T) {
	tx, rx := New[int]()
	testutil.AssertNoError(t, tx.Close())

	// Must not block: zero senders and an empty queue.
	_, ok := rx.Recv()
	testutil.AssertEqual(t, ok, false)
}

func TestFIFOAcrossBatchedDrain(t *testing.T) {
	tx, rx := New[int]()

	const n = 1000
	for i := 0; i < n; i++ {
		tx.Send(i)
	}
	testutil.AssertNoError(t, tx.Close())

	// All values were queued before the first Recv, so the whole queue is
	// drained in one swap; order must survive it.
	for i := 0; i < n; i++ {
		got, ok := rx.Recv()
		testutil.AssertEqual(t, ok, true)
		testutil.AssertEqual(t, got, i)
	}
	_, ok := rx.Recv()
	testutil.AssertEqual(t, ok, false)
}

func TestBatchedDrainAmortizesLocking(t *testing.T) {
	tx, rx := New[int]()

	for i := 0; i < 5; i++ {
		tx.Send(i)
	}

	got, ok := rx.Recv()
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, got, 0)

	// One Recv drained the entire queue into the read-ahead buffer.
	testutil.AssertEqual(t, rx.Len(), 0)
	testutil.AssertEqual(t, rx.Buffered(), 4)
	testutil.AssertEqual(t, rx.Stats().BatchCount, int64(1))

	// The remaining values come from the buffer without touching the queue.
	for want := 1; want < 5; want++ {
		got, ok := rx.Recv()
		testutil.AssertEqual(t, ok, true)
		testutil.AssertEqual(t, got, want)
	}
	testutil.AssertEqual(t, rx.Stats().BatchCount, int64(1))

	testutil.AssertNoError(t, tx.Close())
}

func TestCloneAccounting(t *testing.T) {
	tx, rx := New[int]()

	const k = 5
	clones := make([]*Sender[int], 0, k)
	for i := 0; i < k; i++ {
		clones = append(clones, tx.Clone())
	}
	testutil.AssertEqual(t, tx.Stats().Senders, k+1)

	// Close clones out of order, original in the middle.
	testutil.AssertNoError(t, clones[3].Close())
	testutil.AssertNoError(t, clones[0].Close())
	testutil.AssertNoError(t, tx.Close())
	testutil.AssertNoError(t, clones[4].Close())
	testutil.AssertNoError(t, clones[1].Close())

	// One clone still live: no end-of-stream yet.
	clones[2].Send(7)
	got, ok := rx.Recv()
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, got, 7)
	testutil.AssertEqual(t, rx.Stats().Senders, 1)

	testutil.AssertNoError(t, clones[2].Close())
	_, ok = rx.Recv()
	testutil.AssertEqual(t, ok, false)
}

func TestCloseIdempotent(t *testing.T) {
	tx, rx := New[int]()
	clone := tx.Clone()

	testutil.AssertNoError(t, clone.Close())
	testutil.AssertNoError(t, clone.Close())
	testutil.AssertNoError(t, clone.Close())

	// Double-closing a handle must not drive the count below the one
	// remaining live sender.
	tx.Send(1)
	got, ok := rx.Recv()
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, got, 1)
	testutil.AssertEqual(t, tx.Stats().Senders, 1)

	testutil.AssertNoError(t, tx.Close())
}

func TestSendOnClosedSenderPanics(t *testing.T) {
	tx, rx := New[int]()
	clone := tx.Clone()
	testutil.AssertNoError(t, clone.Close())

	defer func() {
		if recover() == nil {
			t.Fatal("Send on closed Sender should panic")
		}
		testutil.AssertNoError(t, tx.Close())
		_, ok := rx.Recv()
		testutil.AssertEqual(t, ok, false)
	}()
	clone.Send(1)
}

func TestCloneOfClosedSenderPanics(t *testing.T) {
	tx, _ := New[int]()
	clone := tx.Clone()
	testutil.AssertNoError(t, clone.Close())

	defer func() {
		if recover() == nil {
			t.Fatal("Clone of closed Sender should panic")
		}
		testutil.AssertNoError(t, tx.Close())
	}()
	clone.Clone()
}

func TestRecvBlocksUntilSend(t *testing.T) {
	tx, rx := New[string]()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		got, ok := rx.Recv()
		testutil.AssertEqual(t, ok, true)
		testutil.AssertEqual(t, got, "wake")
	}()

	// Give the receiver time to park on the condition variable.
	time.Sleep(10 * time.Millisecond)
	tx.Send("wake")
	wg.Wait()

	testutil.AssertNoError(t, tx.Close())
}

func TestRecvWakesOnLastClose(t *testing.T) {
	tx, rx := New[int]()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, ok := rx.Recv()
		testutil.AssertEqual(t, ok, false)
	}()

	// Receiver parks on an empty queue; the last close must wake it.
	time.Sleep(10 * time.Millisecond)
	testutil.AssertNoError(t, tx.Close())
	wg.Wait()
}

func TestConcurrentSenders(t *testing.T) {
	tx, rx := New[[2]int]()

	const senders = 8
	const perSender = 500

	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		tx := tx.Clone()
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			defer tx.Close()
			for i := 0; i < perSender; i++ {
				tx.Send([2]int{id, i})
			}
		}(s)
	}
	testutil.AssertNoError(t, tx.Close())
	wg.Wait()

	// No lost or duplicated messages, and each sender's own values arrive
	// in its send order even though global interleaving is unspecified.
	next := make([]int, senders)
	received := 0
	for {
		v, ok := rx.Recv()
		if !ok {
			break
		}
		id, seq := v[0], v[1]
		testutil.AssertEqual(t, seq, next[id])
		next[id]++
		received++
	}
	testutil.AssertEqual(t, received, senders*perSender)
	for id := 0; id < senders; id++ {
		testutil.AssertEqual(t, next[id], perSender)
	}
}

func TestSendNeverBlocks(t *testing.T) {
	tx, rx := New[int]()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100000; i++ {
			tx.Send(i)
		}
		_ = tx.Close()
	}()

	// Without a single Recv, every Send must still complete.
	select {
	case <-done:
	case <-time.After(testutil.TestTimeout):
		t.Fatal("Send blocked on an unbounded channel")
	}
	testutil.AssertEqual(t, rx.Len(), 100000)
}

func TestAll(t *testing.T) {
	tx, rx := New[int]()

	go func() {
		defer tx.Close()
		for i := 0; i < 100; i++ {
			tx.Send(i)
		}
	}()

	want := 0
	for v := range rx.All() {
		testutil.AssertEqual(t, v, want)
		want++
	}
	testutil.AssertEqual(t, want, 100)

	// Exhausted iterators stay exhausted.
	for range rx.All() {
		t.Fatal("iterator yielded after end-of-stream")
	}
}

func TestAllEarlyBreak(t *testing.T) {
	tx, rx := New[int]()
	for i := 0; i < 10; i++ {
		tx.Send(i)
	}
	testutil.AssertNoError(t, tx.Close())

	seen := 0
	for v := range rx.All() {
		testutil.AssertEqual(t, v, seen)
		seen++
		if seen == 3 {
			break
		}
	}
	testutil.AssertEqual(t, seen, 3)

	// Breaking out of the loop does not consume the rest of the stream.
	got, ok := rx.Recv()
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, got, 3)
}

func TestTryRecv(t *testing.T) {
	tx, rx := New[int]()

	_, ok := rx.TryRecv()
	testutil.AssertEqual(t, ok, false)

	tx.Send(1)
	tx.Send(2)

	got, ok := rx.TryRecv()
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, got, 1)

	got, ok = rx.TryRecv()
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, got, 2)

	_, ok = rx.TryRecv()
	testutil.AssertEqual(t, ok, false)

	testutil.AssertNoError(t, tx.Close())
	_, ok = rx.TryRecv()
	testutil.AssertEqual(t, ok, false)
}

func TestStats(t *testing.T) {
	tx, rx := New[int]()

	stats := tx.Stats()
	testutil.AssertEqual(t, stats.SendCount, int64(0))
	testutil.AssertEqual(t, stats.Senders, 1)

	tx.Send(1)
	tx.Send(2)
	tx.Send(3)

	stats = tx.Stats()
	testutil.AssertEqual(t, stats.SendCount, int64(3))
	testutil.AssertEqual(t, stats.QueueLen, 3)
	testutil.AssertEqual(t, stats.PeakQueueLen, 3)

	_, _ = rx.Recv()
	_, _ = rx.Recv()

	stats = rx.Stats()
	testutil.AssertEqual(t, stats.ReceiveCount, int64(2))
	testutil.AssertEqual(t, stats.BatchCount, int64(1))
	testutil.AssertEqual(t, stats.QueueLen, 0)
	testutil.AssertEqual(t, stats.PeakQueueLen, 3)

	testutil.AssertNoError(t, tx.Close())
}

func TestLen(t *testing.T) {
	tx, rx := New[int]()

	testutil.AssertEqual(t, tx.Len(), 0)
	tx.Send(1)
	tx.Send(2)
	testutil.AssertEqual(t, tx.Len(), 2)
	testutil.AssertEqual(t, rx.Len(), 2)

	// The first Recv swaps the queue into the read-ahead buffer, so Len
	// drops to zero while Buffered picks up the remainder.
	_, _ = rx.Recv()
	testutil.AssertEqual(t, rx.Len(), 0)
	testutil.AssertEqual(t, rx.Buffered(), 1)

	testutil.AssertNoError(t, tx.Close())
}
