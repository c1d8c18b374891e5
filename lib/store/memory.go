package store

import (
	"context"
	"time"

	"github.com/TecharoHQ/hasher/decaymap"
)

// Memory is a Backend that forgets a preference after it goes unwritten
// for ttl. Everything is lost on restart.
type Memory struct {
	data *decaymap.Impl[string, string]
	ttl  time.Duration
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		data: decaymap.New[string, string](),
		ttl:  ttl,
	}
}

func memoryKey(clientID, key string) string {
	return clientID + "/" + key
}

func (m *Memory) Get(_ context.Context, clientID, key string) (string, bool, error) {
	val, ok := m.data.Get(memoryKey(clientID, key))
	return val, ok, nil
}

func (m *Memory) Set(_ context.Context, clientID, key, value string) error {
	m.data.Set(memoryKey(clientID, key), value, m.ttl)
	return nil
}

func (m *Memory) Cleanup() {
	m.data.Cleanup()
}

// Len counts the preferences held, including expired ones Cleanup has not
// reached yet.
func (m *Memory) Len() int {
	return m.data.Len()
}
