package game

import (
	"context"
	"fmt"

	"crittergrid.gg/internal/protocol"
)

func (g *Game) handlePurchaseOrbs(ctx context.Context, env ActionEnvelope, inst protocol.InstantReq) {
	if g.paused {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrPaused))
		return
	}
	tierIdx, tier, ok := g.tier(inst.Tier)
	if !ok {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrInvalidTier))
		return
	}
	if inst.Qty <= 0 {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrZeroQuantity))
		return
	}

	qty := uint64(inst.Qty)
	total := tier.Price * qty
	if total/qty != tier.Price || (g.cfg.Tuning.MaxPurchase > 0 && total > g.cfg.Tuning.MaxPurchase) {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrPurchaseTooLarge))
		return
	}

	currency := inst.Currency
	if currency == "" {
		currency = g.cfg.Tuning.Currency
	}

	// Cross-currency payments route the converted amount; fee/funding are
	// never re-derived from the pre-conversion total.
	routed := total
	if currency != g.cfg.Tuning.Currency {
		var err error
		routed, err = g.cfg.Settle.Convert(total, currency)
		if err != nil {
			g.emitTo(env.SessionID, resultErr(inst.ID, fmt.Errorf("convert %s: %w", currency, err)))
			return
		}
	}

	if err := g.cfg.Settle.Debit(ctx, env.PlayerID, currency, total); err != nil {
		g.emitTo(env.SessionID, resultErr(inst.ID, fmt.Errorf("debit: %w", err)))
		return
	}

	// Point of no return: all fallible steps are done.
	g.wallet(env.PlayerID).credit(tierIdx, qty)
	fee, funding, pass := g.routeRevenue(ctx, routed)

	if g.cfg.Audit != nil {
		_ = g.cfg.Audit.RecordPurchase(PurchaseRow{
			Player: env.PlayerID, Tier: tier.Name, Qty: inst.Qty,
			Currency: currency, Total: routed, Fee: fee, Funding: funding,
			At: nowUTC(),
		})
		for _, orderID := range pass.Orders {
			_ = g.cfg.Audit.RecordVendOrder(VendOrderRow{
				OrderID: orderID, Cost: g.cfg.Tuning.Vending.UnitCost, At: nowUTC(),
			})
		}
	}

	g.emit(protocol.Event{
		"type":     protocol.EvOrbsPurchased,
		"player":   env.PlayerID,
		"tier":     tier.Name,
		"qty":      inst.Qty,
		"total":    total,
		"currency": currency,
	})
	g.emit(protocol.Event{
		"type":        protocol.EvRevenueRouted,
		"total":       routed,
		"fee":         fee,
		"funding":     funding,
		"vend_orders": len(pass.Orders),
		"stop_reason": pass.StopReason,
	})
	for _, orderID := range pass.Orders {
		g.emit(protocol.Event{
			"type":     protocol.EvVendOrdered,
			"order_id": orderID,
			"cost":     g.cfg.Tuning.Vending.UnitCost,
		})
	}
	g.emitTo(env.SessionID, actionResult(inst.ID, true, "", ""))
}

func (g *Game) handleThrowOrb(ctx context.Context, env ActionEnvelope, inst protocol.InstantReq) {
	if g.paused {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrPaused))
		return
	}
	tierIdx, tier, ok := g.tier(inst.Tier)
	if !ok {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrInvalidTier))
		return
	}
	if inst.Slot == nil {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrInvalidSlot))
		return
	}
	if !g.registry.validSlot(*inst.Slot) {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrInvalidSlot))
		return
	}
	critter, active := g.registry.get(*inst.Slot)
	if !active {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrSlotEmpty))
		return
	}
	w := g.wallet(env.PlayerID)
	if w.Orbs[tierIdx] == 0 {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrInsufficientOrbs))
		return
	}

	requestID := g.nextRequestID()
	seed := makeSeed(requestID, KindThrow)
	if err := g.cfg.Oracle.Request(ctx, requestID, seed); err != nil {
		// The id is burned but no state changed; the orb stays in the wallet.
		g.emitTo(env.SessionID, resultErr(inst.ID, fmt.Errorf("randomness request: %w", err)))
		return
	}

	req := PendingRequest{
		ID:        requestID,
		Kind:      KindThrow,
		Initiator: env.PlayerID,
		Slot:      *inst.Slot,
		Tier:      tierIdx,
		CritterID: critter.ID,
		Seed:      seed,
		CreatedAt: nowUTC(),
	}
	if err := g.ledger.create(req); err != nil {
		g.emitTo(env.SessionID, resultErr(inst.ID, err))
		return
	}
	_ = w.debit(tierIdx)
	w.TotalThrows++

	if g.cfg.Audit != nil {
		_ = g.cfg.Audit.RecordRequest(RequestRow{
			ID: requestID, Kind: req.Kind.String(), Initiator: env.PlayerID,
			Slot: req.Slot, Tier: tier.Name, CritterID: critter.ID, CreatedAt: req.CreatedAt,
		})
	}
	g.emit(protocol.Event{
		"type":       protocol.EvThrowPending,
		"request_id": requestID,
		"player":     env.PlayerID,
		"slot":       req.Slot,
		"critter_id": critter.ID,
		"tier":       tier.Name,
	})
	g.emitTo(env.SessionID, actionResult(inst.ID, true, "", ""))
}
