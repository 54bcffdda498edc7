// Package store provides TrustedStoreReader implementations for the
// Scheduler: an in-memory map and a tendermint/tm-db-backed persistent
// store, the latter grounded on
// coinexchain-tendermint/lite/providers/db/db.go's key-encoding and
// garbage-collection scheme.
package store

import (
	"sync"

	light "github.com/informalsystems/go-light-scheduler/light"
)

// MemStore is an in-memory TrustedStoreReader/writer guarded by a
// sync.RWMutex, so it can be read concurrently by callers without an
// external lock. It is the simplest store that satisfies the Scheduler's
// contract, and is the one most tests and the golden harness use.
type MemStore struct {
	mu     sync.RWMutex
	states map[light.Height]light.TrustedState
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{states: make(map[light.Height]light.TrustedState)}
}

// Get implements light.TrustedStoreReader.
func (m *MemStore) Get(height light.Height) (light.TrustedState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ts, ok := m.states[height]
	return ts, ok
}

// Save records ts under its own height. The Scheduler never calls this;
// it is for the outer application to persist chains returned by Verify.
func (m *MemStore) Save(ts light.TrustedState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[ts.Header.Height] = ts
}

// SaveAll saves every state in states.
func (m *MemStore) SaveAll(states []light.TrustedState) {
	for _, ts := range states {
		m.Save(ts)
	}
}

// LatestHeight returns the greatest height stored, and false if the store
// is empty.
func (m *MemStore) LatestHeight() (light.Height, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var (
		latest light.Height
		found  bool
	)
	for h := range m.states {
		if !found || h > latest {
			latest = h
			found = true
		}
	}
	return latest, found
}
