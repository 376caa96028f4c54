package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/blastmusic247/blast-gear-full/internal/domain"
)

// MemoryStorage keeps the mirror as JSON bytes in memory. Used in tests and
// for running the service without Redis; it round-trips through the same
// encoding as the Redis mirror.
type MemoryStorage struct {
	mu   sync.RWMutex
	data []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load(_ context.Context) (domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.data == nil {
		return domain.Cart{}, nil
	}
	var cart domain.Cart
	if err := json.Unmarshal(m.data, &cart); err != nil {
		return domain.Cart{}, nil
	}
	return cart, nil
}

func (m *MemoryStorage) Save(_ context.Context, cart domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Clear(_ context.Context) error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}
