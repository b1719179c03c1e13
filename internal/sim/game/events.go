package game

import (
	"encoding/json"

	"crittergrid.gg/internal/protocol"
)

func actionResult(ref string, ok bool, code, message string) protocol.Event {
	if !protocol.IsKnownCode(code) {
		code = protocol.ErrInternal
		if message == "" {
			message = "unknown error code"
		}
	}
	e := protocol.Event{
		"type": protocol.EvActionResult,
		"ref":  ref,
		"ok":   ok,
	}
	if code != "" {
		e["code"] = code
	}
	if message != "" {
		e["message"] = message
	}
	return e
}

func resultErr(ref string, err error) protocol.Event {
	return actionResult(ref, false, codeOf(err), err.Error())
}

// emit stamps the event with the next sequence number, records it to the
// event log and audit index, and broadcasts it to every session.
func (g *Game) emit(e protocol.Event) {
	raw := g.record(e)
	for _, c := range g.clients {
		g.send(c, raw)
	}
}

// emitTo sends only to the acting session (per-actor results).
func (g *Game) emitTo(sessionID string, e protocol.Event) {
	raw := g.record(e)
	if c := g.clients[sessionID]; c != nil {
		g.send(c, raw)
	}
}

func (g *Game) record(e protocol.Event) []byte {
	g.eventSeq++
	e["seq"] = g.eventSeq

	msg := protocol.EventMsg{
		Type:            protocol.TypeEvent,
		ProtocolVersion: protocol.Version,
		Event:           e,
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		g.logger.Printf("marshal event: %v", err)
		return nil
	}
	if g.cfg.EventLog != nil {
		if err := g.cfg.EventLog.Write(e); err != nil {
			g.logger.Printf("event log: %v", err)
		}
	}
	if g.cfg.Audit != nil {
		evType, _ := e["type"].(string)
		_ = g.cfg.Audit.RecordEvent(g.eventSeq, evType, raw)
	}
	return raw
}

// send never blocks the loop: a slow consumer drops events.
func (g *Game) send(c *clientState, raw []byte) {
	if raw == nil {
		return
	}
	select {
	case c.out <- raw:
	default:
	}
}
