package game

import "context"

type stateReq struct {
	resp chan StateView
}

// StateView is a read-only copy of the engine state for diagnostics/tests.
type StateView struct {
	Paused    bool
	MaxActive int
	Sessions  int

	Critters []CritterView

	VaultLen    int
	VaultPrizes []string

	Revenue RevenueState
	Wallets map[string]Wallet

	UnresolvedRequests int
	RequestSeq         uint64
	EventSeq           uint64
}

type CritterView struct {
	Slot      int
	ID        uint64
	X         int
	Y         int
	MissCount int
}

// RequestStateView asks the loop for a state snapshot.
func (g *Game) RequestStateView(ctx context.Context) (StateView, error) {
	resp := make(chan StateView, 1)
	select {
	case g.state <- stateReq{resp: resp}:
	case <-ctx.Done():
		return StateView{}, ctx.Err()
	}
	select {
	case sv := <-resp:
		return sv, nil
	case <-ctx.Done():
		return StateView{}, ctx.Err()
	}
}

func (g *Game) stateView() StateView {
	sv := StateView{
		Paused:             g.paused,
		MaxActive:          g.maxActive,
		Sessions:           len(g.clients),
		VaultLen:           g.vault.Len(),
		VaultPrizes:        g.vault.Items(),
		Revenue:            g.revenue,
		Wallets:            map[string]Wallet{},
		UnresolvedRequests: g.ledger.unresolvedCount(),
		RequestSeq:         g.requestSeq,
		EventSeq:           g.eventSeq,
	}
	for i := range g.registry.slots {
		if g.registry.slots[i].active {
			c := g.registry.slots[i].critter
			sv.Critters = append(sv.Critters, CritterView{
				Slot: i, ID: c.ID, X: c.X, Y: c.Y, MissCount: c.MissCount,
			})
		}
	}
	for player, w := range g.wallets {
		cp := Wallet{
			Orbs:           append([]uint64(nil), w.Orbs...),
			TotalPurchased: w.TotalPurchased,
			TotalThrows:    w.TotalThrows,
			TotalCatches:   w.TotalCatches,
		}
		sv.Wallets[player] = cp
	}
	return sv
}
