package memstore

import (
	"sync"
	"time"

	"github.com/rustyorg/gokv/internal/protocol"
)

// MemoryStore is the process-wide, multi-tenant keyed store: a mapping from
// Identity to UserStore. Distinct identities see fully independent
// keyspaces. Reads are the common case; the map is written only when an
// identity's UserStore is first created (on AUTH success, or on a first Set),
// so it is guarded by a readers-writer lock.
type MemoryStore struct {
	mu     sync.RWMutex
	stores map[string]*UserStore
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{stores: make(map[string]*UserStore)}
}

// EnsureUserStore returns the UserStore for identity, atomically creating it
// if this is the identity's first appearance. Safe for concurrent callers
// racing to create the same identity's store.
func (m *MemoryStore) EnsureUserStore(identity string) *UserStore {
	m.mu.RLock()
	s, ok := m.stores[identity]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stores[identity]; ok {
		return s
	}
	s = NewUserStore()
	m.stores[identity] = s
	return s
}

// Set stores (value, now, options) at key in identity's default HashMap
// entity, creating the UserStore and entity as needed.
func (m *MemoryStore) Set(identity, key string, value protocol.Value, now time.Time, opts ExpirationOptions) {
	m.EnsureUserStore(identity).DefaultHashMap().Set(key, value, now, opts)
}

// Get returns the value at key in identity's default HashMap entity, and
// whether it was present and unexpired.
func (m *MemoryStore) Get(identity, key string, now time.Time) (protocol.Value, bool) {
	m.mu.RLock()
	s, ok := m.stores[identity]
	m.mu.RUnlock()
	if !ok {
		return protocol.Value{}, false
	}
	return s.DefaultHashMap().Get(key, now)
}

// Exists reports whether key is present and unexpired in identity's default
// HashMap entity. Used by SET's NX/XX conditionals.
func (m *MemoryStore) Exists(identity, key string, now time.Time) bool {
	m.mu.RLock()
	s, ok := m.stores[identity]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	return s.DefaultHashMap().Exists(key, now)
}

// Delete removes key from identity's default HashMap entity and reports
// whether it had been present.
func (m *MemoryStore) Delete(identity, key string) bool {
	m.mu.RLock()
	s, ok := m.stores[identity]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	return s.DefaultHashMap().Delete(key)
}
