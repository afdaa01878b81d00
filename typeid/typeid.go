package typeid

import (
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// TypeKey uniquely identifies an event type within a single process run.
// Keys are stable for the lifetime of the process but are not guaranteed to
// be stable across runs or builds.
type TypeKey uint64

// cache memoizes reflect.Type → TypeKey. Hashing is cheap but the reflect
// name assembly is not, and Of sits on the dispatch hot path.
var cache sync.Map // reflect.Type → TypeKey

// Of returns the TypeKey for the type T. It is pure, deterministic within a
// process run, and requires no live instance of T.
func Of[T any]() TypeKey {
	return ForType(reflect.TypeOf((*T)(nil)).Elem())
}

// ForType returns the TypeKey for a reflect.Type. Prefer Of when the type is
// known at compile time.
func ForType(t reflect.Type) TypeKey {
	if k, ok := cache.Load(t); ok {
		return k.(TypeKey)
	}
	k := TypeKey(xxhash.Sum64String(qualifiedName(t)))
	cache.Store(t, k)
	return k
}

// qualifiedName builds a collision-resistant name for a type. PkgPath plus
// Name is unique among named types; unnamed types fall back to the full
// structural string.
func qualifiedName(t reflect.Type) string {
	if t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
