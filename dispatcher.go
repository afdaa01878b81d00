package eventcore

import (
	"sync/atomic"

	"github.com/dshills/eventcore/internal/queue"
	"github.com/dshills/eventcore/typeid"
)

// envelope is a type-erased, heap-held copy of one queued event.
type envelope struct {
	key   typeid.TypeKey
	event any
}

// Dispatcher is the facade composing the listener registry, the immediate
// dispatch path, the deferred queue and aggregate statistics.
//
// A Dispatcher is created with New, shared by reference across subsystems,
// and never copied. All methods are safe for concurrent use. Listener
// callbacks run under the registry read lock and therefore must not call
// Subscribe, Unsubscribe or CleanupExpired synchronously; Enqueue is always
// safe from inside a callback.
type Dispatcher struct {
	registry *registry
	queue    *queue.Queue[*envelope]
	config   config

	// Stats
	listeners  atomic.Int64
	dispatches atomic.Uint64
	queued     atomic.Int64
	panics     atomic.Uint64
}

// New creates a Dispatcher with the given options.
func New(opts ...Option) *Dispatcher {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Dispatcher{
		registry: newRegistry(),
		queue:    queue.New[*envelope](),
		config:   cfg,
	}
}

// Subscribe registers a callback for events of type E. The owner is an
// identity used only for removal matching; handle must be derived from the
// same ownership cell that controls the owner's lifetime. Higher priority
// subscriptions run first; equal priorities run in subscription order.
func Subscribe[E Event](d *Dispatcher, owner any, handle Handle, fn func(E), priority Priority) *Subscription {
	sub := newSubscription(
		typeid.Of[E](),
		owner,
		func(event any) { fn(event.(E)) },
		handle,
		priority,
	)
	d.registry.insert(sub)
	d.listeners.Add(1)
	return &Subscription{sub: sub}
}

// Listen subscribes a bound method of the listener held by ref. It is the
// common registration form:
//
//	player := eventcore.NewRef(&Player{ID: 1})
//	eventcore.Listen(d, player, (*Player).OnDied, eventcore.PriorityNormal)
func Listen[E Event, L any](d *Dispatcher, ref *Ref[L], method func(*L, E), priority Priority) *Subscription {
	l := ref.Value()
	return Subscribe(d, l, ref.Handle(), func(ev E) { method(l, ev) }, priority)
}

// Unsubscribe removes every subscription of type E whose owner identity
// matches owner. It returns the number removed; zero when none matched.
func Unsubscribe[E Event](d *Dispatcher, owner any) int {
	removed := d.registry.removeOwner(typeid.Of[E](), owner)
	if removed > 0 {
		d.listeners.Add(int64(-removed))
	}
	return removed
}

// Dispatch synchronously delivers ev to every live listener of type E, in
// priority order. Listeners whose owners expired are marked and reclaimed
// after the pass. Dispatching a type with no listeners is a no-op.
func Dispatch[E Event](d *Dispatcher, ev E) {
	d.dispatchErased(typeid.Of[E](), ev)
}

// Enqueue copies ev into the deferred queue for later delivery via
// ProcessQueuedEvents. It never blocks and never takes the registry lock,
// making it safe from any goroutine, including listener callbacks.
func Enqueue[E Event](d *Dispatcher, ev E) {
	d.queue.Push(&envelope{key: typeid.Of[E](), event: ev})
	d.queued.Add(1)
}

// ProcessQueuedEvents drains up to max queued events through the immediate
// dispatch path and returns the number processed. max <= 0 drains until the
// queue is empty.
//
// Intended to be called from one designated goroutine (e.g. once per frame).
// Concurrent calls are safe but split the queue between callers. Events from
// different producers may interleave; only each producer's own order is
// preserved.
func (d *Dispatcher) ProcessQueuedEvents(max int) int {
	processed := 0
	for max <= 0 || processed < max {
		env, ok := d.queue.TryPop()
		if !ok {
			break
		}
		d.dispatchErased(env.key, env.event)
		d.queued.Add(-1)
		processed++
	}
	return processed
}

// CleanupExpired removes every subscription whose owner expired or that was
// cancelled, across all event types, and returns the number removed.
// Idempotent; safe to call at any cadence.
func (d *Dispatcher) CleanupExpired() int {
	removed := d.registry.sweepAll()
	if removed > 0 {
		d.listeners.Add(int64(-removed))
		d.logRemoved(removed)
	}
	return removed
}

// ListenerCount returns the number of subscriptions for event type E,
// including entries not yet reclaimed.
func ListenerCount[E Event](d *Dispatcher) int {
	return d.registry.count(typeid.Of[E]())
}

// TotalListenerCount returns the current number of registered subscriptions.
func (d *Dispatcher) TotalListenerCount() int {
	return int(d.listeners.Load())
}

// TotalDispatchCount returns the cumulative number of dispatch passes that
// found a registered event type.
func (d *Dispatcher) TotalDispatchCount() uint64 {
	return d.dispatches.Load()
}

// QueuedEventCount returns the current deferred-queue depth.
func (d *Dispatcher) QueuedEventCount() int {
	return int(d.queued.Load())
}

// EventTypeCount returns the number of distinct event types with at least one
// subscription.
func (d *Dispatcher) EventTypeCount() int {
	return d.registry.typeCount()
}

// Stats returns a snapshot of the dispatcher counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		TotalListeners:  int(d.listeners.Load()),
		TotalDispatches: d.dispatches.Load(),
		QueuedEvents:    int(d.queued.Load()),
		EventTypes:      d.registry.typeCount(),
		HandlerPanics:   d.panics.Load(),
	}
}

// dispatchErased is the single delivery path shared by Dispatch and the
// queue drain. The read lock is released before the post-pass sweep; another
// goroutine may mutate the registry in that window, which sweep tolerates.
func (d *Dispatcher) dispatchErased(key typeid.TypeKey, event any) {
	found, needsSweep := d.registry.pass(key, func(s *subscription) {
		d.invoke(s, event)
	})
	if !found {
		return
	}
	d.dispatches.Add(1)

	if needsSweep {
		if removed := d.registry.sweep(key); removed > 0 {
			d.listeners.Add(int64(-removed))
			d.logRemoved(removed)
		}
	}
}

// invoke runs one callback with panic isolation. A panicking listener does
// not stop delivery to the rest of the pass.
func (d *Dispatcher) invoke(s *subscription, event any) {
	defer func() {
		if recovered := recover(); recovered != nil {
			d.panics.Add(1)
			if d.config.logger != nil {
				d.config.logger.Error("listener panic", "subscription", s.id, "recovered", recovered)
			}
			if d.config.panicHandler != nil {
				d.config.panicHandler(event, recovered)
			}
		}
	}()
	s.invoke(event)
}

func (d *Dispatcher) logRemoved(n int) {
	if d.config.logger != nil {
		d.config.logger.Debug("reclaimed expired listeners", "count", n)
	}
}
