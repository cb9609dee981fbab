package storage

import (
	"context"
	"sync"

	"github.com/angelmondragon/miniapp-storefront/internal/cart"
)

// Memory keeps the serialized cart in process memory. It exercises the same
// JSON round-trip as the durable backends, which keeps tests honest.
type Memory struct {
	mu      sync.Mutex
	payload []byte
}

// NewMemory returns an empty in-memory cart storage.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) ([]cart.Line, error) {
	m.mu.Lock()
	payload := m.payload
	m.mu.Unlock()
	return decodeLines(payload)
}

func (m *Memory) Save(ctx context.Context, lines []cart.Line) error {
	payload, err := encodeLines(lines)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.payload = payload
	m.mu.Unlock()
	return nil
}

// Corrupt overwrites the stored payload with garbage. Test helper for the
// malformed-data fallback path.
func (m *Memory) Corrupt() {
	m.mu.Lock()
	m.payload = []byte("{not json")
	m.mu.Unlock()
}
