package vbox

import (
	"context"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// MemoryStore is an in-process stand-in for the guest property store.
// It implements both the host-side SessionManager and the guest-side
// property reader, which lets the demo binary and tests run the full
// publish/fetch path without VirtualBox installed.
type MemoryStore struct {
	props cmap.ConcurrentMap[string, string]
}

// NewMemoryStore creates an empty in-memory property store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{props: cmap.New[string]()}
}

// AcquireSession implements SessionManager.
func (m *MemoryStore) AcquireSession() (Session, error) {
	return &memorySession{store: m}, nil
}

// GetGuestProperty mirrors the ControlClient read contract.
func (m *MemoryStore) GetGuestProperty(_ context.Context, key string) (string, bool, error) {
	value, ok := m.props.Get(key)
	return value, ok, nil
}

// Set writes a property directly, bypassing the session protocol.
// Used by tests to seed store contents.
func (m *MemoryStore) Set(key, value string) {
	m.props.Set(key, value)
}

// Keys lists all property keys currently present.
func (m *MemoryStore) Keys() []string {
	return m.props.Keys()
}

type memorySession struct {
	store  *MemoryStore
	locked bool
}

func (s *memorySession) Lock() error {
	s.locked = true
	return nil
}

func (s *memorySession) SetProperty(key, value string) error {
	s.store.props.Set(key, value)
	return nil
}

func (s *memorySession) Unlock() error {
	s.locked = false
	return nil
}
