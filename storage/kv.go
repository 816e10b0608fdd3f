package storage

import (
	"context"
	"encoding/json"
	"sync"
)

// KV is the narrow key-value port shared by the cart store and the auth
// shadow. Each key holds one JSON document; keys are saved independently, so
// there is no transactional guarantee across keys.
type KV interface {
	// Get returns the raw document and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// LoadJSON reads and decodes the document at key into out. A missing,
// unreadable, or unparseable document all report false: a corrupt entry is
// treated as absent and never propagates an error to the caller.
func LoadJSON(ctx context.Context, kv KV, key string, out interface{}) bool {
	data, ok, err := kv.Get(ctx, key)
	if err != nil || !ok {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false
	}
	return true
}

// SaveJSON encodes v and writes it at key.
func SaveJSON(ctx context.Context, kv KV, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return kv.Set(ctx, key, data)
}

// Memory is an in-memory KV used by tests and as a fallback when no Redis is
// configured.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[key] = cp
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}
