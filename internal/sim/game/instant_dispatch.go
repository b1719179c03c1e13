package game

import (
	"context"

	"crittergrid.gg/internal/protocol"
)

type instantHandler func(g *Game, ctx context.Context, env ActionEnvelope, inst protocol.InstantReq)

var instantDispatch = map[string]instantHandler{
	protocol.InstPurchaseOrbs: (*Game).handlePurchaseOrbs,
	protocol.InstThrowOrb:     (*Game).handleThrowOrb,

	protocol.InstSpawn:           (*Game).handleSpawn,
	protocol.InstForceSpawn:      (*Game).handleForceSpawn,
	protocol.InstDespawn:         (*Game).handleDespawn,
	protocol.InstReposition:      (*Game).handleReposition,
	protocol.InstDepositPrize:    (*Game).handleDepositPrize,
	protocol.InstWithdrawPrize:   (*Game).handleWithdrawPrize,
	protocol.InstWithdrawRevenue: (*Game).handleWithdrawRevenue,
	protocol.InstSetOrbPrice:     (*Game).handleSetOrbPrice,
	protocol.InstSetCatchRate:    (*Game).handleSetCatchRate,
	protocol.InstSetMaxActive:    (*Game).handleSetMaxActive,
	protocol.InstSetPaused:       (*Game).handleSetPaused,
	protocol.InstRecoverPrize:    (*Game).handleRecoverPrize,
	protocol.InstSetPendingVend:  (*Game).handleSetPendingVend,
}

var adminInstants = map[string]bool{
	protocol.InstSpawn:           true,
	protocol.InstForceSpawn:      true,
	protocol.InstDespawn:         true,
	protocol.InstReposition:      true,
	protocol.InstDepositPrize:    true,
	protocol.InstWithdrawPrize:   true,
	protocol.InstWithdrawRevenue: true,
	protocol.InstSetOrbPrice:     true,
	protocol.InstSetCatchRate:    true,
	protocol.InstSetMaxActive:    true,
	protocol.InstSetPaused:       true,
	protocol.InstRecoverPrize:    true,
	protocol.InstSetPendingVend:  true,
}

func (g *Game) applyInstant(ctx context.Context, env ActionEnvelope, inst protocol.InstantReq) {
	h := instantDispatch[inst.Type]
	if h == nil {
		g.emitTo(env.SessionID, actionResult(inst.ID, false, protocol.ErrBadRequest, "unknown instant type"))
		return
	}
	if adminInstants[inst.Type] && env.Role != protocol.RoleAdmin {
		g.emitTo(env.SessionID, resultErr(inst.ID, ErrNoPermission))
		return
	}
	h(g, ctx, env, inst)
}
