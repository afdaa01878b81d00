// Package queue provides an unbounded, lock-free, multi-producer FIFO queue
// used as the holding area for deferred event dispatch.
//
// Push never blocks and never fails; TryPop never blocks and reports emptiness
// instead of waiting. Elements pushed by a single goroutine are observed in
// push order by any consumer. Multiple concurrent consumers are safe, though
// the dispatcher drains from one designated goroutine in the common case.
package queue

import "sync/atomic"

type node[T any] struct {
	value T
	next  atomic.Pointer[node[T]]
}

// Queue is a Michael–Scott linked queue. The zero value is not usable; call
// New.
type Queue[T any] struct {
	head atomic.Pointer[node[T]]
	tail atomic.Pointer[node[T]]
}

// New returns an empty queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	sentinel := &node[T]{}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
	return q
}

// Push appends v to the queue. Safe for any number of concurrent producers.
func (q *Queue[T]) Push(v T) {
	n := &node[T]{value: v}
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			continue
		}
		if next != nil {
			// Tail is lagging; help it forward.
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		if tail.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(tail, n)
			return
		}
	}
}

// TryPop removes and returns the oldest element. It returns the zero value
// and false when the queue is empty at the moment of the attempt.
func (q *Queue[T]) TryPop() (T, bool) {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			continue
		}
		if next == nil {
			var zero T
			return zero, false
		}
		if head == tail {
			// Tail is lagging behind a completed push.
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		if q.head.CompareAndSwap(head, next) {
			v := next.value
			var zero T
			next.value = zero // release for GC; next is the new sentinel
			return v, true
		}
	}
}
