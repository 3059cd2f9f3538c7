package store

import (
	"encoding/json"
	"sync"
)

// MemoryStore keeps documents in a map. Used as the deterministic fake in
// tests and as a fallback when no data directory is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]json.RawMessage)}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Get(key string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getLocked(key)
}

func (m *MemoryStore) Set(key string, doc json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setLocked(key, doc)
}

func (m *MemoryStore) Update(fn func(view Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memoryView{m})
}

func (m *MemoryStore) getLocked(key string) (json.RawMessage, error) {
	doc, ok := m.docs[key]
	if !ok {
		return nil, nil
	}
	cp := make(json.RawMessage, len(doc))
	copy(cp, doc)
	return cp, nil
}

func (m *MemoryStore) setLocked(key string, doc json.RawMessage) error {
	cp := make(json.RawMessage, len(doc))
	copy(cp, doc)
	m.docs[key] = cp
	return nil
}

// memoryView is handed to Update callbacks; the outer lock is already held.
type memoryView struct{ m *MemoryStore }

func (v *memoryView) Get(key string) (json.RawMessage, error) { return v.m.getLocked(key) }
func (v *memoryView) Set(key string, doc json.RawMessage) error {
	return v.m.setLocked(key, doc)
}
func (v *memoryView) Update(fn func(view Store) error) error { return fn(v) }
