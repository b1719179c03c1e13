package game

import (
	"context"

	"github.com/google/uuid"

	"crittergrid.gg/internal/protocol"
)

// Run owns all engine state. Every envelope is handled to completion before
// the next is read; nothing else may touch the state.
func (g *Game) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-g.stop:
			return nil
		case req := <-g.join:
			g.handleJoin(req)
		case sessionID := <-g.leave:
			delete(g.clients, sessionID)
		case env := <-g.act:
			g.handleAct(ctx, env)
		case env := <-g.deliver:
			g.handleDeliver(ctx, env)
		case req := <-g.state:
			req.resp <- g.stateView()
		}
	}
}

func (g *Game) Stop() { close(g.stop) }

func (g *Game) handleJoin(req JoinRequest) {
	sessionID := uuid.NewString()

	var playerID string
	switch req.Role {
	case protocol.RoleAdmin:
		playerID = g.cfg.AuthorityID
	case protocol.RoleProvider:
		playerID = g.cfg.Tuning.Auth.ProviderID
	default:
		playerID = uuid.NewString()
	}

	g.clients[sessionID] = &clientState{
		sessionID: sessionID,
		playerID:  playerID,
		role:      req.Role,
		out:       req.Out,
	}
	g.logger.Printf("join session=%s player=%s name=%q role=%s", sessionID, playerID, req.Name, req.Role)

	req.Resp <- JoinResponse{Welcome: protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sessionID,
		PlayerID:        playerID,
		Role:            req.Role,
		GameParams:      g.gameParams(),
	}}
}

func (g *Game) gameParams() protocol.GameParams {
	tiers := make([]protocol.TierParams, len(g.tiers))
	for i, t := range g.tiers {
		tiers[i] = protocol.TierParams{Tier: t.Name, Price: t.Price, CatchRate: t.CatchRate}
	}
	return protocol.GameParams{
		Tiers:      tiers,
		MaxActive:  g.maxActive,
		FieldBound: g.cfg.Tuning.FieldBound,
		Currency:   g.cfg.Tuning.Currency,
		Paused:     g.paused,
	}
}

func (g *Game) handleAct(ctx context.Context, env ActionEnvelope) {
	for _, inst := range env.Act.Instants {
		g.applyInstant(ctx, env, inst)
	}
}
