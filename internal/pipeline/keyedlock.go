package pipeline

import "sync"

// KeyedLock serializes work per string key. Used to guarantee at most one
// concurrent cache-gate execution per fingerprint: the second unit blocks
// until the first has persisted, then observes a cache hit.
type KeyedLock struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedLock creates an empty keyed lock.
func NewKeyedLock() *KeyedLock {
	return &KeyedLock{locks: make(map[string]*keyedEntry)}
}

// Lock acquires the lock for key, blocking while another holder has it,
// and returns the matching unlock. Entries are dropped once unreferenced
// so the map does not grow with the fingerprint space.
func (k *KeyedLock) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
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
