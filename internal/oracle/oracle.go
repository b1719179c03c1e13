// Package oracle provides the development randomness provider. Production
// deployments attach a remote provider over the websocket DELIVER surface
// instead.
package oracle

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"log"
	"sync"
	"time"
)

// DeliverFunc receives a fulfilled randomness value for a request id.
type DeliverFunc func(requestID uint64, randomness [64]byte)

// Local draws 64 bytes of entropy per request and delivers it after a fixed
// delay, mimicking the request/fulfill round trip of a real provider.
type Local struct {
	delay   time.Duration
	deliver DeliverFunc
	logger  *log.Logger

	mu     sync.Mutex
	closed bool
	timers []*time.Timer
}

func NewLocal(delay time.Duration, deliver DeliverFunc, logger *log.Logger) *Local {
	return &Local{delay: delay, deliver: deliver, logger: logger}
}

func (l *Local) Request(ctx context.Context, requestID uint64, seed [32]byte) error {
	var entropy [32]byte
	if _, err := rand.Read(entropy[:]); err != nil {
		return err
	}

	// 64 bytes from two chained digests over seed+entropy.
	h1 := sha256.Sum256(append(seed[:], entropy[:]...))
	h2 := sha256.Sum256(h1[:])
	var randomness [64]byte
	copy(randomness[:32], h1[:])
	copy(randomness[32:], h2[:])

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return context.Canceled
	}
	t := time.AfterFunc(l.delay, func() {
		l.deliver(requestID, randomness)
	})
	l.timers = append(l.timers, t)
	return nil
}

// Close stops undelivered fulfillments (shutdown only; a real provider has no
// cancellation and an unresolved request stays pending forever).
func (l *Local) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	for _, t := range l.timers {
		t.Stop()
	}
	l.timers = nil
}

// Remote represents a provider that watches requests out-of-band and fulfills
// them over the transport's DELIVER surface. Request only logs; the engine
// keeps the request pending until the provider delivers.
type Remote struct {
	providerID string
	logger     *log.Logger
}

func NewRemote(providerID string, logger *log.Logger) *Remote {
	return &Remote{providerID: providerID, logger: logger}
}

func (r *Remote) Request(ctx context.Context, requestID uint64, seed [32]byte) error {
	if r.logger != nil {
		r.logger.Printf("randomness request %d awaiting provider %s", requestID, r.providerID)
	}
	return nil
}
