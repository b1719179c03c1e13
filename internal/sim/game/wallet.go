package game

// Wallet is one player's orb balances and lifetime stats.
type Wallet struct {
	Orbs           []uint64 // per tier index
	TotalPurchased uint64
	TotalThrows    uint64
	TotalCatches   uint64
}

func newWallet(tiers int) *Wallet {
	return &Wallet{Orbs: make([]uint64, tiers)}
}

func (w *Wallet) credit(tier int, qty uint64) {
	w.Orbs[tier] += qty
	w.TotalPurchased += qty
}

// debit removes one orb; the balance check keeps counts non-negative.
func (w *Wallet) debit(tier int) error {
	if tier < 0 || tier >= len(w.Orbs) {
		return ErrInvalidTier
	}
	if w.Orbs[tier] == 0 {
		return ErrInsufficientOrbs
	}
	w.Orbs[tier]--
	return nil
}
