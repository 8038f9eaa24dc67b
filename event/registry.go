package event

import (
	"sync"
	"sync/atomic"
)

// registry holds subscriptions in registration order. Readers load an
// immutable slice without locking; writers serialise on mu and publish a new
// slice, so a snapshot taken by an emit is never changed underneath it.
type registry struct {
	mu      sync.Mutex
	entries atomic.Pointer[[]*entry]
}

func newRegistry() *registry {
	r := &registry{}
	empty := make([]*entry, 0)
	r.entries.Store(&empty)
	return r
}

func (r *registry) load() []*entry {
	return *r.entries.Load()
}

// add appends e and returns it.
func (r *registry) add(e *entry) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.load()
	next := make([]*entry, len(old), len(old)+1)
	copy(next, old)
	next = append(next, e)
	r.entries.Store(&next)
	return e
}

// remove drops the entry with id, reporting whether it was present.
func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.load()
	for i, e := range old {
		if e.id != id {
			continue
		}
		next := make([]*entry, 0, len(old)-1)
		next = append(next, old[:i]...)
		next = append(next, old[i+1:]...)
		r.entries.Store(&next)
		return true
	}
	return false
}

// clear drops every entry and returns how many were removed.
func (r *registry) clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.load())
	empty := make([]*entry, 0)
	r.entries.Store(&empty)
	return n
}

// snapshot returns the entries matching key, in registration order.
func (r *registry) snapshot(key string) []*entry {
	all := r.load()
	var matched []*entry
	for _, e := range all {
		if e.pattern.Matches(key) {
			matched = append(matched, e)
		}
	}
	return matched
}

func (r *registry) has(id string) bool {
	for _, e := range r.load() {
		if e.id == id {
			return true
		}
	}
	return false
}

func (r *registry) len() int {
	return len(r.load())
}
