package artifact

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MemStore is an in-memory Store implementation for testing.
type MemStore struct {
	mu        sync.RWMutex
	artifacts map[string]*Artifact
	corrupt   map[string]bool
	calls     MemCalls
}

// MemCalls tracks method invocations for test verification.
type MemCalls struct {
	Exists  int
	Load    int
	Persist int
}

// NewMemStore creates a new in-memory artifact store.
func NewMemStore() *MemStore {
	return &MemStore{
		artifacts: make(map[string]*Artifact),
		corrupt:   make(map[string]bool),
	}
}

// Exists checks cache presence for a fingerprint.
func (m *MemStore) Exists(_ context.Context, fingerprint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Exists++
	_, ok := m.artifacts[fingerprint]
	return ok || m.corrupt[fingerprint], nil
}

// Load retrieves the artifact for a fingerprint.
func (m *MemStore) Load(_ context.Context, fingerprint string) (*Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Load++
	if m.corrupt[fingerprint] {
		return nil, CorruptError{Fingerprint: fingerprint, Err: errUnreadable}
	}
	a, ok := m.artifacts[fingerprint]
	if !ok {
		return nil, NotFoundError{Fingerprint: fingerprint}
	}
	cp := *a
	cp.Input = a.Input.Clone()
	cp.Output = a.Output.Clone()
	return &cp, nil
}

// Persist stores a finalized artifact (write-once).
func (m *MemStore) Persist(_ context.Context, a *Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Persist++
	if _, ok := m.artifacts[a.Fingerprint]; ok && !m.corrupt[a.Fingerprint] {
		return nil
	}
	delete(m.corrupt, a.Fingerprint)
	cp := *a
	cp.Input = a.Input.Clone()
	cp.Output = a.Output.Clone()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	m.artifacts[a.Fingerprint] = &cp
	return nil
}

// Prune removes artifacts created before the cutoff.
func (m *MemStore) Prune(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for fp, a := range m.artifacts {
		if a.CreatedAt.Before(cutoff) {
			delete(m.artifacts, fp)
			removed++
		}
	}
	return removed, nil
}

// Close releases nothing; it exists to satisfy Store.
func (m *MemStore) Close() error { return nil }

// Corrupt marks a fingerprint as present but unreadable, so Load returns
// CorruptError. Test hook for the cache-corruption policy.
func (m *MemStore) Corrupt(fingerprint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.artifacts, fingerprint)
	m.corrupt[fingerprint] = true
}

// Calls returns a snapshot of the invocation counters.
func (m *MemStore) Calls() MemCalls {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

var errUnreadable = errors.New("record marked unreadable")
