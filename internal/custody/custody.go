// Package custody tracks prize ownership. The in-memory registry stands in
// for an external asset-custody service in development and tests.
package custody

import (
	"fmt"
	"sync"
)

type Mem struct {
	mu      sync.Mutex
	holders map[string]string
}

func NewMem() *Mem {
	return &Mem{holders: map[string]string{}}
}

// Register creates a prize under an initial holder (minting on delivery).
func (m *Mem) Register(prize, holder string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.holders[prize]; ok {
		return fmt.Errorf("prize %s already registered", prize)
	}
	m.holders[prize] = holder
	return nil
}

func (m *Mem) Holder(prize string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.holders[prize]
	return h, ok
}

func (m *Mem) Transfer(prize, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.holders[prize]
	if !ok {
		return fmt.Errorf("prize %s not registered", prize)
	}
	if h != from {
		return fmt.Errorf("prize %s held by %s, not %s", prize, h, from)
	}
	m.holders[prize] = to
	return nil
}
