package eventcore

import (
	"sort"
	"sync"

	"github.com/dshills/eventcore/typeid"
)

// registry maps each event type to its ordered subscription list. Lists are
// kept in non-increasing priority order; equal priorities preserve insertion
// order. Keys exist only while their list is non-empty.
//
// Structural mutation requires the write lock. Dispatch iterates under the
// read lock and marks expired entries instead of removing them; removal
// happens in a later sweep under the write lock.
type registry struct {
	mu    sync.RWMutex
	types map[typeid.TypeKey][]*subscription
}

func newRegistry() *registry {
	return &registry{
		types: make(map[typeid.TypeKey][]*subscription),
	}
}

// insert adds sub at the stable upper-bound position for its priority: after
// every entry with priority >= sub.priority, before the first strictly lower
// one.
func (r *registry) insert(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.types[sub.key]
	i := sort.Search(len(subs), func(i int) bool {
		return subs[i].priority < sub.priority
	})

	subs = append(subs, nil)
	copy(subs[i+1:], subs[i:])
	subs[i] = sub
	r.types[sub.key] = subs
}

// removeOwner removes every subscription under key whose owner identity
// matches owner. Returns the number removed.
func (r *registry) removeOwner(key typeid.TypeKey, owner any) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, ok := r.types[key]
	if !ok {
		return 0
	}

	kept := subs[:0]
	for _, s := range subs {
		if s.owner != owner {
			kept = append(kept, s)
		}
	}
	removed := len(subs) - len(kept)
	if removed == 0 {
		return 0
	}

	if len(kept) == 0 {
		delete(r.types, key)
	} else {
		r.types[key] = kept
	}
	return removed
}

// pass runs one dispatch iteration under the read lock. For each entry in
// stored order: pending entries are skipped, live entries are visited while
// holding a strong reference, expired entries are marked pending. Returns
// whether the key had an entry and whether a sweep is owed.
func (r *registry) pass(key typeid.TypeKey, visit func(*subscription)) (found, needsSweep bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs, ok := r.types[key]
	if !ok {
		return false, false
	}

	for _, s := range subs {
		if s.pending.Load() {
			needsSweep = true
			continue
		}
		release, ok := s.handle.Acquire()
		if !ok {
			s.pending.Store(true)
			needsSweep = true
			continue
		}
		visit(s)
		release()
	}
	return true, needsSweep
}

// sweep removes reclaimable entries under one key. The expired set observed
// by an earlier pass may have been removed already by another goroutine;
// sweep re-checks under the write lock and is idempotent.
func (r *registry) sweep(key typeid.TypeKey) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(key)
}

// sweepAll removes reclaimable entries for every key.
func (r *registry) sweepAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key := range r.types {
		removed += r.sweepLocked(key)
	}
	return removed
}

func (r *registry) sweepLocked(key typeid.TypeKey) int {
	subs, ok := r.types[key]
	if !ok {
		return 0
	}

	kept := subs[:0]
	for _, s := range subs {
		if !s.reclaimable() {
			kept = append(kept, s)
		}
	}
	removed := len(subs) - len(kept)
	if removed == 0 {
		return 0
	}

	if len(kept) == 0 {
		delete(r.types, key)
	} else {
		r.types[key] = kept
	}
	return removed
}

// count returns the number of subscriptions under key.
func (r *registry) count(key typeid.TypeKey) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types[key])
}

// typeCount returns the number of keys with at least one subscription.
func (r *registry) typeCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}
