// Package optimistic layers not-yet-confirmed writes over authoritative data.
//
// An Overlay holds at most one pending value per key. Readers ask for the
// effective value by passing the authoritative one; the pending value wins
// while present. An entry is cleared when authoritative data shows the same
// value (Reconcile) or when the write that produced it is rejected (Reject).
package optimistic

import "sync"

// Token identifies a single proposal; it is used to reject exactly that write.
type Token uint64

type entry[V comparable] struct {
	value V
	base  V
	token Token
}

// Overlay is safe for concurrent use.
type Overlay[K comparable, V comparable] struct {
	mu      sync.Mutex
	next    Token
	pending map[K]entry[V]
}

func New[K comparable, V comparable]() *Overlay[K, V] {
	return &Overlay[K, V]{pending: make(map[K]entry[V])}
}

// Propose records value for key. base is the last authoritative value and is
// kept from the first outstanding proposal when proposals stack up.
func (o *Overlay[K, V]) Propose(key K, value, base V) Token {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.next++
	if e, ok := o.pending[key]; ok {
		base = e.base
	}
	o.pending[key] = entry[V]{value: value, base: base, token: o.next}
	return o.next
}

// Value returns the pending value for key, or server when nothing is pending.
func (o *Overlay[K, V]) Value(key K, server V) V {
	o.mu.Lock()
	defer o.mu.Unlock()

	if e, ok := o.pending[key]; ok {
		return e.value
	}
	return server
}

// Lookup returns the pending value for key if there is one.
func (o *Overlay[K, V]) Lookup(key K) (V, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.pending[key]
	return e.value, ok
}

func (o *Overlay[K, V]) Pending(key K) bool {
	_, ok := o.Lookup(key)
	return ok
}

// Reconcile clears the entry for key when the authoritative value equals the
// pending one. Otherwise the entry's base moves to server. It reports whether
// the entry was cleared.
func (o *Overlay[K, V]) Reconcile(key K, server V) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.pending[key]
	if !ok {
		return false
	}
	if e.value == server {
		delete(o.pending, key)
		return true
	}
	e.base = server
	o.pending[key] = e
	return false
}

// Reject drops the entry for key if token is still its latest proposal and
// returns the value readers fall back to. A superseded token is a no-op.
func (o *Overlay[K, V]) Reject(key K, token Token) (V, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.pending[key]
	if !ok || e.token != token {
		var zero V
		return zero, false
	}
	delete(o.pending, key)
	return e.base, true
}

// Keys returns the keys with pending entries.
func (o *Overlay[K, V]) Keys() []K {
	o.mu.Lock()
	defer o.mu.Unlock()

	keys := make([]K, 0, len(o.pending))
	for k := range o.pending {
		keys = append(keys, k)
	}
	return keys
}

func (o *Overlay[K, V]) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}
