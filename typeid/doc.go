// Package typeid derives stable, process-unique identifiers for Go types.
//
// The event dispatcher stores heterogeneous subscriptions and queued events in
// uniform containers keyed by TypeKey. A key is the 64-bit xxhash of the
// type's fully qualified name, so two distinct named types never share a key
// and the same type always yields the same key within one process run.
//
// Keys are not stable across builds; never persist them.
package typeid
