package mirror

import (
	"sync"

	"github.com/library-fullstack/borrowcart/internal/app/model"
)

// MemoryMirror is an in-process mirror used in tests and as a no-op fallback
// when no durable backend is configured.
type MemoryMirror struct {
	mu   sync.Mutex
	cart *model.Cart
}

func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{}
}

func (m *MemoryMirror) Load() (*model.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cart == nil {
		return nil, nil
	}
	return m.cart.Clone(), nil
}

func (m *MemoryMirror) Save(cart *model.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = cart.Clone()
	return nil
}

func (m *MemoryMirror) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = nil
	return nil
}
