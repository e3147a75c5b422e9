package entity

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"weak"
)

// Cache is the per-type identity map: key tuple to the single live
// instance for that key. Entries are weak pointers, so the cache never
// keeps an otherwise-unreferenced instance alive.
//
// The entity layer is single-goroutine by contract; the mutex exists
// because weak-entry cleanups run on the runtime's cleanup goroutine.
type Cache struct {
	mu      sync.Mutex
	entries map[string]weak.Pointer[Instance]
}

func newCache() *Cache {
	return &Cache{entries: make(map[string]weak.Pointer[Instance])}
}

// Lookup returns the live instance for the key, if resident.
func (c *Cache) Lookup(key any) (*Instance, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := encodeKey(key)
	wp, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	in := wp.Value()
	if in == nil {
		// collected but not yet cleaned up
		delete(c.entries, k)
		return nil, false
	}
	return in, true
}

// Intern atomically checks-and-inserts: if a live instance already exists
// for in's key, that instance is the canonical result and in is discarded
// by the caller; otherwise in is registered and returned.
func (c *Cache) Intern(in *Instance) *Instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := encodeKey(in.Key())
	if wp, ok := c.entries[k]; ok {
		if existing := wp.Value(); existing != nil {
			return existing
		}
	}
	c.register(k, in)
	return in
}

// MustRegister registers an instance under a key that must not be present.
// Used after a surrogate-key insert; a hit is a cache-coherency violation
// and therefore a programming error, not a recoverable condition.
func (c *Cache) MustRegister(in *Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := encodeKey(in.Key())
	if wp, ok := c.entries[k]; ok {
		if existing := wp.Value(); existing != nil && existing != in {
			panic(fmt.Sprintf("entity: identity map of %s already holds key %s", in.typ.name, k))
		}
	}
	c.register(k, in)
}

func (c *Cache) register(k string, in *Instance) {
	wp := weak.Make(in)
	c.entries[k] = wp
	runtime.AddCleanup(in, func(key string) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur == wp {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}, k)
}

// Len counts entries, including ones whose instance is gone but not yet
// cleaned up.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// encodeKey flattens a key value (scalar or []any tuple) into a map key.
// Tuple components are quoted so a separator byte inside a string
// component cannot shift the boundaries; key arity is fixed per type, so
// scalar and tuple forms never mix within one cache.
func encodeKey(key any) string {
	if tuple, ok := key.([]any); ok {
		parts := make([]string, len(tuple))
		for i, v := range tuple {
			parts[i] = strconv.Quote(fmt.Sprintf("%v", v))
		}
		return strings.Join(parts, "\x1f")
	}
	return fmt.Sprintf("%v", key)
}
