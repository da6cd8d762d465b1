package credentials

import "sync"

// MemoryStore implements [Store] without persistence. Used by tests and by
// sessions that should not write credentials to disk.
type MemoryStore struct {
	mu        sync.Mutex
	record    TokenRecord
	hasRecord bool
	authState string
	hasState  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(record TokenRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = record
	m.hasRecord = true
	return nil
}

func (m *MemoryStore) Load() (TokenRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasRecord || m.record.AccessToken == "" {
		return TokenRecord{}, false, nil
	}
	return m.record, true, nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = TokenRecord{}
	m.hasRecord = false
	return nil
}

func (m *MemoryStore) SaveAuthState(state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authState = state
	m.hasState = true
	return nil
}

func (m *MemoryStore) LoadAuthState() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasState || m.authState == "" {
		return "", false, nil
	}
	return m.authState, true, nil
}

func (m *MemoryStore) ClearAuthState() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authState = ""
	m.hasState = false
	return nil
}
