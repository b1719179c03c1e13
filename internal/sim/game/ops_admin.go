package game

import (
	"context"
	"fmt"

	"crittergrid.gg/internal/protocol"
)

func (g *Game) handleSpawn(ctx context.Context, env ActionEnvelope, inst protocol.InstantReq) {
	if inst.Slot == nil || !g.registry.validSlot(*inst.Slot) {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrInvalidSlot))
		return
	}
	if _, active := g.registry.get(*inst.Slot); active {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrSlotOccupied))
		return
	}
	if g.registry.activeCount() >= g.maxActive {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrMaxActive))
		return
	}
	if err := g.requestSpawn(ctx, env.PlayerID, *inst.Slot); err != nil {
		g.emitTo(env.SessionID, resultErr(inst.ID, err))
		return
	}
	g.emitTo(env.SessionID, actionResult(inst.ID, true, "", ""))
}

// requestSpawn issues a spawn randomness request for an empty slot. Shared by
// the admin SPAWN instant and the auto-respawn after a catch.
func (g *Game) requestSpawn(ctx context.Context, initiator string, slotIdx int) error {
	requestID := g.nextRequestID()
	seed := makeSeed(requestID, KindSpawn)
	if err := g.cfg.Oracle.Request(ctx, requestID, seed); err != nil {
		return fmt.Errorf("randomness request: %w", err)
	}
	req := PendingRequest{
		ID:        requestID,
		Kind:      KindSpawn,
		Initiator: initiator,
		Slot:      slotIdx,
		Seed:      seed,
		CreatedAt: nowUTC(),
	}
	if err := g.ledger.create(req); err != nil {
		return err
	}
	if g.cfg.Audit != nil {
		_ = g.cfg.Audit.RecordRequest(RequestRow{
			ID: requestID, Kind: req.Kind.String(), Initiator: initiator,
			Slot: slotIdx, CreatedAt: req.CreatedAt,
		})
	}
	g.emit(protocol.Event{
		"type":       protocol.EvSpawnPending,
		"request_id": requestID,
		"slot":       slotIdx,
	})
	return nil
}

func (g *Game) handleForceSpawn(ctx context.Context, env ActionEnvelope, inst protocol.InstantReq) {
	if inst.Slot == nil || !g.registry.validSlot(*inst.Slot) {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrInvalidSlot))
		return
	}
	if inst.X == nil || inst.Y == nil || !g.registry.validCoord(*inst.X, *inst.Y) {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrInvalidCoord))
		return
	}
	if g.registry.activeCount() >= g.maxActive {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrMaxActive))
		return
	}
	c := Critter{ID: g.nextCritterID(), X: *inst.X, Y: *inst.Y, SpawnedAt: nowUTC()}
	if err := g.registry.spawn(*inst.Slot, c); err != nil {
		g.emitTo(env.SessionID, resultErr(inst.ID, err))
		return
	}
	g.emit(protocol.Event{
		"type":       protocol.EvCritterSpawned,
		"critter_id": c.ID,
		"slot":       *inst.Slot,
		"x":          c.X,
		"y":          c.Y,
		"forced":     true,
	})
	g.emitTo(env.SessionID, actionResult(inst.ID, true, "", ""))
}

func (g *Game) handleDespawn(ctx context.Context, env ActionEnvelope, inst protocol.InstantReq) {
	if inst.Slot == nil {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrInvalidSlot))
		return
	}
	c, err := g.registry.despawn(*inst.Slot)
	if err != nil {
		g.emitTo(env.SessionID, resultErr(inst.ID, err))
		return
	}
	g.emit(protocol.Event{
		"type":       protocol.EvCritterDespawned,
		"critter_id": c.ID,
		"slot":       *inst.Slot,
	})
	g.emitTo(env.SessionID, actionResult(inst.ID, true, "", ""))
}

func (g *Game) handleReposition(ctx context.Context, env ActionEnvelope, inst protocol.InstantReq) {
	if inst.Slot == nil {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrInvalidSlot))
		return
	}
	if inst.X == nil || inst.Y == nil {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrInvalidCoord))
		return
	}
	old, _ := g.registry.get(*inst.Slot)
	if err := g.registry.reposition(*inst.Slot, *inst.X, *inst.Y); err != nil {
		g.emitTo(env.SessionID, resultErr(inst.ID, err))
		return
	}
	g.emit(protocol.Event{
		"type":       protocol.EvCritterRelocated,
		"critter_id": old.ID,
		"slot":       *inst.Slot,
		"old_x":      old.X,
		"old_y":      old.Y,
		"x":          *inst.X,
		"y":          *inst.Y,
	})
	g.emitTo(env.SessionID, actionResult(inst.ID, true, "", ""))
}

func (g *Game) handleDepositPrize(ctx context.Context, env ActionEnvelope, inst protocol.InstantReq) {
	if inst.PrizeID == "" {
		g.emitTo(env.SessionID, actionResult(inst.ID, false, protocol.ErrBadRequest, "missing prize_id"))
		return
	}
	if g.vault.Contains(inst.PrizeID) {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrPrizeHeld))
		return
	}
	if g.vault.Len() >= g.vault.Capacity() {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrVaultFull))
		return
	}
	if err := g.cfg.Custody.Transfer(inst.PrizeID, env.PlayerID, g.cfg.VaultAccount); err != nil {
		g.emitTo(env.SessionID, resultErr(inst.ID, fmt.Errorf("custody transfer: %w", err)))
		return
	}
	_ = g.vault.Add(inst.PrizeID)
	g.emit(protocol.Event{
		"type":      protocol.EvPrizeDeposited,
		"prize_id":  inst.PrizeID,
		"vault_len": g.vault.Len(),
	})
	g.emitTo(env.SessionID, actionResult(inst.ID, true, "", ""))
}

func (g *Game) handleWithdrawPrize(ctx context.Context, env ActionEnvelope, inst protocol.InstantReq) {
	if inst.PrizeID == "" {
		g.emitTo(env.SessionID, actionResult(inst.ID, false, protocol.ErrBadRequest, "missing prize_id"))
		return
	}
	if !g.vault.Contains(inst.PrizeID) {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrPrizeNotFound))
		return
	}
	recipient := inst.Recipient
	if recipient == "" {
		recipient = env.PlayerID
	}
	if err := g.cfg.Custody.Transfer(inst.PrizeID, g.cfg.VaultAccount, recipient); err != nil {
		g.emitTo(env.SessionID, resultErr(inst.ID, fmt.Errorf("custody transfer: %w", err)))
		return
	}
	_ = g.vault.RemoveByID(inst.PrizeID)
	g.emit(protocol.Event{
		"type":      protocol.EvPrizeWithdrawn,
		"prize_id":  inst.PrizeID,
		"recipient": recipient,
		"vault_len": g.vault.Len(),
	})
	g.emitTo(env.SessionID, actionResult(inst.ID, true, "", ""))
}

func (g *Game) handleWithdrawRevenue(ctx context.Context, env ActionEnvelope, inst protocol.InstantReq) {
	if inst.Amount == 0 {
		g.emitTo(env.SessionID, actionResult(inst.ID, false, protocol.ErrBadRequest, "zero amount"))
		return
	}
	if inst.Amount > g.revenue.FeeAccrued {
		g.emitTo(env.SessionID, resultErr(inst.ID,
			fmt.Errorf("%w: accrued %d, requested %d", ErrInsufficientRevenue, g.revenue.FeeAccrued, inst.Amount)))
		return
	}
	recipient := inst.Recipient
	if recipient == "" {
		recipient = env.PlayerID
	}
	if err := g.cfg.Settle.Credit(ctx, recipient, g.cfg.Tuning.Currency, inst.Amount); err != nil {
		g.emitTo(env.SessionID, resultErr(inst.ID, fmt.Errorf("credit: %w", err)))
		return
	}
	g.revenue.FeeAccrued -= inst.Amount
	g.revenue.TotalWithdrawn += inst.Amount
	g.emit(protocol.Event{
		"type":      protocol.EvRevenueWithdrawn,
		"recipient": recipient,
		"amount":    inst.Amount,
	})
	g.emitTo(env.SessionID, actionResult(inst.ID, true, "", ""))
}

func (g *Game) handleSetOrbPrice(ctx context.Context, env ActionEnvelope, inst protocol.InstantReq) {
	tierIdx, tier, ok := g.tier(inst.Tier)
	if !ok {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrInvalidTier))
		return
	}
	if inst.Price == 0 {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrZeroPrice))
		return
	}
	old := tier.Price
	g.tiers[tierIdx].Price = inst.Price
	g.emit(protocol.Event{
		"type":      protocol.EvOrbPriceUpdated,
		"tier":      tier.Name,
		"old_price": old,
		"new_price": inst.Price,
	})
	g.emitTo(env.SessionID, actionResult(inst.ID, true, "", ""))
}

func (g *Game) handleSetCatchRate(ctx context.Context, env ActionEnvelope, inst protocol.InstantReq) {
	tierIdx, tier, ok := g.tier(inst.Tier)
	if !ok {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrInvalidTier))
		return
	}
	if inst.Rate == nil || *inst.Rate < 0 || *inst.Rate > 100 {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrInvalidCatchRate))
		return
	}
	old := tier.CatchRate
	g.tiers[tierIdx].CatchRate = *inst.Rate
	g.emit(protocol.Event{
		"type":     protocol.EvCatchRateUpdated,
		"tier":     tier.Name,
		"old_rate": old,
		"new_rate": *inst.Rate,
	})
	g.emitTo(env.SessionID, actionResult(inst.ID, true, "", ""))
}

func (g *Game) handleSetMaxActive(ctx context.Context, env ActionEnvelope, inst protocol.InstantReq) {
	if inst.Max < 1 || inst.Max > HardCapSlots {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrInvalidMaxActive))
		return
	}
	old := g.maxActive
	g.maxActive = inst.Max
	g.emit(protocol.Event{
		"type":    protocol.EvMaxActiveUpdated,
		"old_max": old,
		"new_max": inst.Max,
	})
	g.emitTo(env.SessionID, actionResult(inst.ID, true, "", ""))
}

func (g *Game) handleSetPaused(ctx context.Context, env ActionEnvelope, inst protocol.InstantReq) {
	if inst.Paused == nil {
		g.emitTo(env.SessionID, actionResult(inst.ID, false, protocol.ErrBadRequest, "missing paused"))
		return
	}
	g.paused = *inst.Paused
	g.emit(protocol.Event{
		"type":   protocol.EvPausedUpdated,
		"paused": g.paused,
	})
	g.emitTo(env.SessionID, actionResult(inst.ID, true, "", ""))
}

// handleRecoverPrize admits a prize that arrived in vault custody without
// passing through the engine (a vend delivery that bypassed the receipt hook).
func (g *Game) handleRecoverPrize(ctx context.Context, env ActionEnvelope, inst protocol.InstantReq) {
	if inst.PrizeID == "" {
		g.emitTo(env.SessionID, actionResult(inst.ID, false, protocol.ErrBadRequest, "missing prize_id"))
		return
	}
	if g.vault.Contains(inst.PrizeID) {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrPrizeHeld))
		return
	}
	holder, ok := g.cfg.Custody.Holder(inst.PrizeID)
	if !ok || holder != g.cfg.VaultAccount {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrNotInCustody))
		return
	}
	if err := g.vault.Add(inst.PrizeID); err != nil {
		g.emitTo(env.SessionID, resultErr(inst.ID, err))
		return
	}
	if g.revenue.PendingVend > 0 {
		g.revenue.PendingVend--
	}
	g.emit(protocol.Event{
		"type":         protocol.EvPrizeRecovered,
		"prize_id":     inst.PrizeID,
		"vault_len":    g.vault.Len(),
		"pending_vend": g.revenue.PendingVend,
	})
	g.emitTo(env.SessionID, actionResult(inst.ID, true, "", ""))
}

// handleSetPendingVend repairs the in-flight vend order counter when custody
// deliveries desynchronize it.
func (g *Game) handleSetPendingVend(ctx context.Context, env ActionEnvelope, inst protocol.InstantReq) {
	if inst.Count == nil || *inst.Count < 0 {
		g.emitTo(env.SessionID, actionResult(inst.ID, false, protocol.ErrBadRequest, "missing count"))
		return
	}
	old := g.revenue.PendingVend
	g.revenue.PendingVend = uint64(*inst.Count)
	g.emit(protocol.Event{
		"type":      protocol.EvVendCountRepaired,
		"old_count": old,
		"new_count": g.revenue.PendingVend,
	})
	g.emitTo(env.SessionID, actionResult(inst.ID, true, "", ""))
}
