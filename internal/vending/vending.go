// Package vending provides the development vending service. Each order mints
// a fresh prize and transfers it into the recipient's custody after a delay,
// without notifying the engine. This reproduces the untracked-arrival behavior
// of the real vending integration (prizes are admitted via RECOVER_PRIZE).
package vending

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registrar is the custody surface the vendor delivers into.
type Registrar interface {
	Register(prize, holder string) error
}

type Stub struct {
	custody Registrar
	delay   time.Duration
	logger  *log.Logger

	mu     sync.Mutex
	orders int
}

func NewStub(custody Registrar, delay time.Duration, logger *log.Logger) *Stub {
	return &Stub{custody: custody, delay: delay, logger: logger}
}

func (s *Stub) Purchase(ctx context.Context, qty int, recipient string) (string, error) {
	orderID := uuid.NewString()
	s.mu.Lock()
	s.orders++
	s.mu.Unlock()

	time.AfterFunc(s.delay, func() {
		for i := 0; i < qty; i++ {
			prize := "prize-" + uuid.NewString()
			if err := s.custody.Register(prize, recipient); err != nil {
				if s.logger != nil {
					s.logger.Printf("vendor delivery %s: %v", orderID, err)
				}
				continue
			}
			if s.logger != nil {
				s.logger.Printf("vendor delivered %s to %s (order %s); recover it to admit", prize, recipient, orderID)
			}
		}
	})
	return orderID, nil
}

// Orders reports how many orders were placed (diagnostics).
func (s *Stub) Orders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders
}
