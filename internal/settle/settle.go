// Package settle provides the development payment settlement. Balances are
// per account per currency; conversion uses fixed configured rates.
package settle

import (
	"context"
	"fmt"
	"sync"
)

// Rate converts a foreign amount into base units: amount*Num/Den.
type Rate struct {
	Num uint64
	Den uint64
}

type Mem struct {
	mu       sync.Mutex
	balances map[string]map[string]uint64
	rates    map[string]Rate
}

func NewMem(rates map[string]Rate) *Mem {
	if rates == nil {
		rates = map[string]Rate{}
	}
	return &Mem{
		balances: map[string]map[string]uint64{},
		rates:    rates,
	}
}

// Fund seeds a balance (tests and dev bootstrap).
func (m *Mem) Fund(account, currency string, amount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.account(account)[currency] += amount
}

func (m *Mem) Balance(account, currency string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.account(account)[currency]
}

func (m *Mem) Debit(ctx context.Context, account, currency string, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal := m.account(account)[currency]
	if bal < amount {
		return fmt.Errorf("account %s: %s balance %d short of %d", account, currency, bal, amount)
	}
	m.account(account)[currency] = bal - amount
	return nil
}

func (m *Mem) Credit(ctx context.Context, account, currency string, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.account(account)[currency] += amount
	return nil
}

func (m *Mem) Convert(amount uint64, currency string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rates[currency]
	if !ok || r.Den == 0 {
		return 0, fmt.Errorf("no conversion rate for %s", currency)
	}
	return amount * r.Num / r.Den, nil
}

func (m *Mem) account(name string) map[string]uint64 {
	acc := m.balances[name]
	if acc == nil {
		acc = map[string]uint64{}
		m.balances[name] = acc
	}
	return acc
}
