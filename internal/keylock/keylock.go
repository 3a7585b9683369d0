// Package keylock provides mutual exclusion keyed by an arbitrary
// string.  The registration and favorite repositories use it to
// serialize writers that touch the same (user, event) or
// (user, item) key before they reach the database, which keeps
// same-key races out of MySQL's lock-wait and deadlock paths.
// Operations on different keys proceed fully in parallel.
package keylock

import "sync"

// KeyLock hands out one mutex per key on demand.  Entries are
// reference counted and removed again once the last holder releases,
// so the map does not grow with the key space.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New returns an empty KeyLock ready for use.
func New() *KeyLock {
	return &KeyLock{locks: make(map[string]*entry)}
}

// Acquire blocks until the lock for key is held and returns the
// function that releases it.  The release function must be called
// exactly once, typically via defer.
func (k *KeyLock) Acquire(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
