// Package eventcore provides a type-safe, in-process publish/subscribe
// dispatcher. Producers announce strongly-typed event values; independently
// owned listeners register interest in specific event types and are invoked
// in priority order when a matching event is dispatched. It decouples
// subsystems (engine modules, services) without manual callback bookkeeping.
//
// # Architecture
//
// The dispatcher composes four pieces:
//
//   - a registry mapping each event type's TypeKey to a priority-ordered
//     subscription list (exclusive lock for structural writes, shared lock
//     for dispatch)
//   - the immediate dispatch path: synchronous fan-out under the shared lock
//   - the deferred queue: an unbounded lock-free holding area for events
//     produced off the consuming goroutine, drained through the immediate
//     path by ProcessQueuedEvents
//   - atomic statistics counters
//
// # Events
//
// An event is any struct embedding BaseEvent. The requirement is enforced at
// compile time by the generic constraint on Subscribe, Dispatch and Enqueue:
//
//	type PlayerDied struct {
//	    eventcore.BaseEvent
//	    PlayerID int
//	}
//
// # Listener lifetime
//
// The dispatcher never owns listeners. Each listener pairs with an Anchor (or
// the Ref convenience wrapper); subscriptions hold a weak Handle to it and
// upgrade at call time. Once the owner retires the Anchor, the listener is
// never invoked again and its subscriptions are reclaimed, either by the
// automatic post-dispatch sweep or by an explicit CleanupExpired call:
//
//	ref := eventcore.NewRef(&AudioSystem{})
//	eventcore.Listen(d, ref, (*AudioSystem).OnPlayerDied, eventcore.PriorityNormal)
//	...
//	ref.Release() // subscriptions expire silently
//
// # Ordering
//
// Within one dispatch, listeners run in non-increasing priority order;
// equal-priority listeners run in subscription order. Across enqueue calls
// from different goroutines only per-producer FIFO order survives the drain;
// no ordering is guaranteed across different event types.
//
// # Concurrency
//
// All dispatcher operations are safe for concurrent use. Listener callbacks
// execute under the registry's shared lock, so a callback must not call
// Subscribe, Unsubscribe or CleanupExpired synchronously — publish follow-up
// events with Enqueue instead and drain them after the pass.
package eventcore
