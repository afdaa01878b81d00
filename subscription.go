package eventcore

import (
	"sync/atomic"

	"github.com/dshills/eventcore/typeid"
	"github.com/google/uuid"
)

// subscription is one listener's registration to one event type.
type subscription struct {
	id    string
	key   typeid.TypeKey
	owner any

	// invoke performs the listener's typed callback. The dispatcher never
	// inspects the event beyond its TypeKey; insertion and lookup always use
	// the same compile-time-derived key, so the assertion inside invoke
	// cannot fail.
	invoke func(event any)

	handle   Handle
	priority Priority

	// pending defers structural removal until outside a dispatch pass. Set
	// while holding only the registry read lock, so it must be atomic.
	pending atomic.Bool
}

func newSubscription(key typeid.TypeKey, owner any, invoke func(any), h Handle, p Priority) *subscription {
	return &subscription{
		id:       uuid.NewString(),
		key:      key,
		owner:    owner,
		invoke:   invoke,
		handle:   h,
		priority: p,
	}
}

// reclaimable reports whether a sweep should remove this entry.
func (s *subscription) reclaimable() bool {
	return s.pending.Load() || s.handle.Expired()
}

// Subscription is the caller-facing handle returned by Subscribe and Listen.
// Cancel marks the registration for removal; the next dispatch pass or
// cleanup reclaims it. A cancelled subscription is never invoked again.
type Subscription struct {
	sub *subscription
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.sub.id
}

// Priority returns the priority the subscription was registered with.
func (s *Subscription) Priority() Priority {
	return s.sub.priority
}

// Cancel marks the subscription for removal. Idempotent.
func (s *Subscription) Cancel() {
	s.sub.pending.Store(true)
}

// Cancelled reports whether Cancel has been called or the listener expired.
func (s *Subscription) Cancelled() bool {
	return s.sub.reclaimable()
}
