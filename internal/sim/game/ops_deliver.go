package game

import (
	"context"
	"fmt"

	"crittergrid.gg/internal/protocol"
)

// handleDeliver applies one randomness fulfillment. The ledger resolve is the
// exactly-once gate: every downstream effect runs only after it succeeds.
func (g *Game) handleDeliver(ctx context.Context, env DeliverEnvelope) {
	result := g.applyDeliver(ctx, env)
	if env.Resp != nil {
		env.Resp <- result
	}
}

func (g *Game) applyDeliver(ctx context.Context, env DeliverEnvelope) DeliverResult {
	if env.Principal != g.cfg.Tuning.Auth.ProviderID {
		return DeliverResult{Code: codeOf(ErrNotProvider), Message: ErrNotProvider.Error()}
	}
	req, err := g.ledger.resolve(env.RequestID)
	if err != nil {
		return DeliverResult{Code: codeOf(err), Message: err.Error()}
	}

	var outcome string
	switch req.Kind {
	case KindThrow:
		outcome, err = g.resolveThrow(ctx, req, env.Randomness)
	case KindSpawn:
		outcome = g.resolveSpawn(req, env.Randomness)
	default:
		err = fmt.Errorf("request %d: bad kind %d", req.ID, req.Kind)
	}
	if err != nil {
		// An external collaborator failed mid-resolution. Nothing was
		// mutated; revert the resolve so the provider may redeliver.
		g.ledger.unresolve(req.ID)
		return DeliverResult{Code: codeOf(err), Message: err.Error()}
	}

	if g.cfg.Audit != nil {
		_ = g.cfg.Audit.RecordResolution(ResolutionRow{
			ID: req.ID, Outcome: outcome, ResolvedAt: req.ResolvedAt,
		})
	}
	return DeliverResult{OK: true}
}

// resolveThrow decides catch/miss. A missing or replaced critter is a
// legitimate race outcome, not an error: the throw resolves as a no-op.
func (g *Game) resolveThrow(ctx context.Context, req *PendingRequest, randomness [64]byte) (string, error) {
	slotIdx, found := g.registry.findByID(req.CritterID)
	if !found {
		return "discarded", nil
	}

	if req.Tier < 0 || req.Tier >= len(g.tiers) {
		return "discarded", nil
	}
	rate := g.tiers[req.Tier].CatchRate
	roll := catchRoll(randomness)

	if !caught(roll, rate) {
		return g.resolveMiss(req, slotIdx, randomness)
	}

	// Award before clearing the slot: the custody transfer is the one step
	// that can fail, and it must fail the whole resolution.
	var prize string
	if g.vault.Len() > 0 {
		var peekIdx int
		if g.cfg.Tuning.AwardMode == "fifo" {
			peekIdx = 0
		} else {
			peekIdx = awardIndex(randomness, g.vault.Len())
		}
		prize = g.vault.Items()[peekIdx]
		if err := g.cfg.Custody.Transfer(prize, g.cfg.VaultAccount, req.Initiator); err != nil {
			return "", fmt.Errorf("award custody transfer: %w", err)
		}
		_ = g.vault.RemoveByID(prize)
		g.revenue.TotalAwarded++
		if g.cfg.Audit != nil {
			_ = g.cfg.Audit.RecordAward(AwardRow{
				Player: req.Initiator, Prize: prize, CritterID: req.CritterID, At: nowUTC(),
			})
		}
	}

	g.wallet(req.Initiator).TotalCatches++
	critter, _ := g.registry.despawn(slotIdx)

	if prize != "" {
		g.emit(protocol.Event{
			"type":       protocol.EvPrizeAwarded,
			"player":     req.Initiator,
			"prize_id":   prize,
			"vault_len":  g.vault.Len(),
			"critter_id": critter.ID,
		})
	}
	g.emit(protocol.Event{
		"type":       protocol.EvCritterCaught,
		"player":     req.Initiator,
		"critter_id": critter.ID,
		"slot":       slotIdx,
		"prize_id":   prize,
	})

	if g.cfg.Tuning.AutoRespawn {
		if err := g.requestSpawn(ctx, g.cfg.AuthorityID, slotIdx); err != nil {
			// Best effort: the slot stays empty until an admin spawns.
			g.logger.Printf("auto respawn slot %d: %v", slotIdx, err)
		}
	}
	return "caught", nil
}

// resolveMiss increments the miss count; the third consecutive miss
// relocates the critter (coordinates sliced from the same randomness) and
// forgives the misses, leaving it active.
func (g *Game) resolveMiss(req *PendingRequest, slotIdx int, randomness [64]byte) (string, error) {
	misses, err := g.registry.recordMiss(slotIdx)
	if err != nil {
		return "discarded", nil
	}
	critter, _ := g.registry.get(slotIdx)

	if misses >= MissLimit {
		x, y := relocPos(randomness, g.cfg.Tuning.FieldBound)
		oldX, oldY := critter.X, critter.Y
		_ = g.registry.reposition(slotIdx, x, y)
		// Every miss notifies; relocation forgives the streak, so a full set
		// of attempts remains.
		g.emit(protocol.Event{
			"type":               protocol.EvCatchMissed,
			"player":             req.Initiator,
			"critter_id":         critter.ID,
			"slot":               slotIdx,
			"attempts_remaining": MissLimit,
		})
		g.emit(protocol.Event{
			"type":       protocol.EvCritterRelocated,
			"critter_id": critter.ID,
			"slot":       slotIdx,
			"old_x":      oldX,
			"old_y":      oldY,
			"x":          x,
			"y":          y,
		})
		return "relocated", nil
	}

	g.emit(protocol.Event{
		"type":               protocol.EvCatchMissed,
		"player":             req.Initiator,
		"critter_id":         critter.ID,
		"slot":               slotIdx,
		"attempts_remaining": MissLimit - misses,
	})
	return "missed", nil
}

// resolveSpawn places a critter at a position derived from the randomness.
// A slot that became occupied while the request was in flight lost the race;
// the fulfillment is discarded silently.
func (g *Game) resolveSpawn(req *PendingRequest, randomness [64]byte) string {
	if !g.registry.validSlot(req.Slot) {
		return "discarded"
	}
	if _, active := g.registry.get(req.Slot); active {
		return "discarded"
	}
	x, y := spawnPos(randomness, g.cfg.Tuning.FieldBound)
	c := Critter{ID: g.nextCritterID(), X: x, Y: y, SpawnedAt: nowUTC()}
	if err := g.registry.spawn(req.Slot, c); err != nil {
		return "discarded"
	}
	g.emit(protocol.Event{
		"type":       protocol.EvCritterSpawned,
		"critter_id": c.ID,
		"slot":       req.Slot,
		"x":          x,
		"y":          y,
	})
	return "spawned"
}
