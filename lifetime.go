package eventcore

import "sync/atomic"

// Anchor is the shared-ownership cell for a listener. The dispatcher never
// owns listeners; it observes liveness through Handles derived from the
// listener's Anchor. When the owner retires the Anchor, every Handle stops
// upgrading and the listener's subscriptions become eligible for reclamation.
type Anchor struct {
	// refs counts strong references. The owner's reference is counted at
	// creation; it reaches zero once Retire has run and no callback holds a
	// transient upgrade.
	refs    atomic.Int64
	retired atomic.Bool
}

// NewAnchor returns a live Anchor holding the owner's reference.
func NewAnchor() *Anchor {
	a := &Anchor{}
	a.refs.Store(1)
	return a
}

// Retire drops the owner's reference. After Retire, Handle upgrades fail once
// in-flight callbacks drain. Retire is idempotent.
func (a *Anchor) Retire() {
	if a.retired.CompareAndSwap(false, true) {
		a.refs.Add(-1)
	}
}

// Handle returns a non-owning handle observing this Anchor.
func (a *Anchor) Handle() Handle {
	return Handle{anchor: a}
}

// Handle is a weak, checkable reference to a listener's Anchor. The zero
// value is permanently expired. Handles are copyable and safe for concurrent
// use.
type Handle struct {
	anchor *Anchor
}

// Acquire upgrades the handle to a strong reference for the duration of a
// callback. On success it returns a release func that must be called exactly
// once. It fails when the Anchor has been retired.
func (h Handle) Acquire() (release func(), ok bool) {
	a := h.anchor
	if a == nil {
		return nil, false
	}
	for {
		n := a.refs.Load()
		if n <= 0 {
			return nil, false
		}
		if a.refs.CompareAndSwap(n, n+1) {
			return func() { a.refs.Add(-1) }, true
		}
	}
}

// Expired reports whether an upgrade would currently fail.
func (h Handle) Expired() bool {
	return h.anchor == nil || h.anchor.refs.Load() <= 0
}

// Ref pairs a listener value with its Anchor, covering the common case where
// one object owns exactly one liveness cell. Release retires the Anchor;
// subscriptions made through the Ref then expire automatically.
type Ref[L any] struct {
	value  *L
	anchor *Anchor
}

// NewRef wraps a listener in a live Ref.
func NewRef[L any](value *L) *Ref[L] {
	return &Ref[L]{value: value, anchor: NewAnchor()}
}

// Value returns the listener.
func (r *Ref[L]) Value() *L {
	return r.value
}

// Handle returns a weak handle observing the Ref's Anchor.
func (r *Ref[L]) Handle() Handle {
	return r.anchor.Handle()
}

// Release retires the Ref's Anchor. Idempotent.
func (r *Ref[L]) Release() {
	r.anchor.Retire()
}
