package eventcore

import (
	"sync"
	"testing"

	"pgregory.net/rapid"
)

type propEvent struct {
	BaseEvent
	N int
}

// probe is a minimal listener owner. It carries a field so that distinct
// instances have distinct addresses (zero-sized allocations may share one).
type probe struct {
	id int
}

// Dispatch must invoke listeners in non-increasing priority order, with
// equal-priority listeners firing in subscription order, for any sequence of
// subscribe calls.
func TestDispatchOrdering_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := New()

		n := rapid.IntRange(0, 32).Draw(t, "listeners")

		type call struct {
			index    int
			priority Priority
		}
		var calls []call
		var mu sync.Mutex

		refs := make([]*Ref[probe], n)
		for i := 0; i < n; i++ {
			p := Priority(rapid.IntRange(0, 3).Draw(t, "priority"))

			refs[i] = NewRef(&probe{})
			Subscribe(d, refs[i].Value(), refs[i].Handle(), func(propEvent) {
				mu.Lock()
				calls = append(calls, call{index: i, priority: p})
				mu.Unlock()
			}, p)
		}

		Dispatch(d, propEvent{N: 1})

		if len(calls) != n {
			t.Fatalf("invoked %d listeners, want %d", len(calls), n)
		}
		for i := 1; i < len(calls); i++ {
			prev, cur := calls[i-1], calls[i]
			if cur.priority > prev.priority {
				t.Fatalf("priority %v ran after %v", cur.priority, prev.priority)
			}
			if cur.priority == prev.priority && cur.index < prev.index {
				t.Fatalf("equal-priority listeners out of subscription order: %d after %d",
					cur.index, prev.index)
			}
		}
	})
}

// ProcessQueuedEvents(max) must process at most max events per call, leave
// the remainder queued, and in total deliver every enqueued event exactly
// once, for any enqueue count and any sequence of drain limits.
func TestProcessQueuedLimits_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := New()

		var delivered []int
		ref := NewRef(&probe{})
		Subscribe(d, ref.Value(), ref.Handle(), func(ev propEvent) {
			delivered = append(delivered, ev.N)
		}, PriorityNormal)

		total := rapid.IntRange(0, 100).Draw(t, "total")
		for i := 0; i < total; i++ {
			Enqueue(d, propEvent{N: i})
		}

		remaining := total
		for remaining > 0 {
			max := rapid.IntRange(1, 10).Draw(t, "max")
			n := d.ProcessQueuedEvents(max)
			want := max
			if remaining < max {
				want = remaining
			}
			if n != want {
				t.Fatalf("ProcessQueuedEvents(%d) = %d with %d remaining, want %d",
					max, n, remaining, want)
			}
			remaining -= n
			if got := d.QueuedEventCount(); got != remaining {
				t.Fatalf("QueuedEventCount() = %d, want %d", got, remaining)
			}
		}

		if len(delivered) != total {
			t.Fatalf("delivered %d events, want %d", len(delivered), total)
		}
		for i, n := range delivered {
			if n != i {
				t.Fatalf("single-producer order violated: delivered[%d] = %d", i, n)
			}
		}
	})
}

// The listener counter must equal the number of registered subscriptions
// after any quiescent sequence of subscribe/unsubscribe/release/cleanup.
func TestListenerCounter_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := New()

		var live []*Ref[probe]
		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0, 1: // subscribe
				ref := NewRef(&probe{})
				Subscribe(d, ref.Value(), ref.Handle(), func(propEvent) {}, PriorityNormal)
				live = append(live, ref)
			case 2: // unsubscribe one
				if len(live) > 0 {
					Unsubscribe[propEvent](d, live[0].Value())
					live = live[1:]
				}
			case 3: // release one and clean up
				if len(live) > 0 {
					live[len(live)-1].Release()
					live = live[:len(live)-1]
					d.CleanupExpired()
				}
			}
		}

		if got := d.TotalListenerCount(); got != len(live) {
			t.Fatalf("TotalListenerCount() = %d, want %d", got, len(live))
		}
		if got := ListenerCount[propEvent](d); got != len(live) {
			t.Fatalf("ListenerCount = %d, want %d", got, len(live))
		}
	})
}

// Exercises the window between a dispatch pass releasing the read lock and
// the post-pass sweep taking the write lock, with other goroutines mutating
// the registry in between. The sweep must tolerate entries already removed.
func TestDispatchCleanupWindow_Concurrent(t *testing.T) {
	if testing.Short() {
		t.Skip("concurrency stress test")
	}

	d := New()
	var wg sync.WaitGroup

	stop := make(chan struct{})

	// Churn: subscribe then immediately release or unsubscribe.
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				ref := NewRef(&probe{})
				Subscribe(d, ref.Value(), ref.Handle(), func(propEvent) {}, PriorityNormal)
				ref.Release()
			}
		}()
	}

	// Dispatchers trigger expiry detection and the post-pass sweep.
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				Dispatch(d, propEvent{N: 1})
				d.CleanupExpired()
			}
		}()
	}

	// Producers and drainer.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			Enqueue(d, propEvent{N: i})
			d.ProcessQueuedEvents(4)
		}
	}()

	for i := 0; i < 2000; i++ {
		Dispatch(d, propEvent{N: i})
	}
	close(stop)
	wg.Wait()

	d.ProcessQueuedEvents(0)
	d.CleanupExpired()
	if got := d.TotalListenerCount(); got != 0 {
		t.Errorf("TotalListenerCount() = %d after full churn, want 0", got)
	}
	if got := d.QueuedEventCount(); got != 0 {
		t.Errorf("QueuedEventCount() = %d after drain, want 0", got)
	}
}
