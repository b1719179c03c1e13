// Command bot is a development traffic generator: it joins as a player,
// buys orbs on a timer and throws them at whichever critters it has seen
// spawn. Useful for exercising the catch pipeline against a local server
// with the built-in oracle.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"crittergrid.gg/internal/protocol"
)

func main() {
	var (
		url      = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name     = flag.String("name", "bot", "player name")
		tier     = flag.String("tier", "basic", "orb tier to buy and throw")
		interval = flag.Duration("interval", 2*time.Second, "delay between throws")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
		Capabilities:    protocol.HelloCaps{MaxQueue: 64},
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	b := &bot{
		conn:    conn,
		logger:  logger,
		tier:    *tier,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		slots:   map[int]bool{},
		nextAct: time.Now().Add(*interval),
	}
	b.interval = *interval

	for {
		select {
		case <-stop:
			return
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			logger.Printf("read: %v", err)
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME player_id=%s tiers=%d paused=%v", w.PlayerID, len(w.GameParams.Tiers), w.GameParams.Paused)

		case protocol.TypeEvent:
			var ev protocol.EventMsg
			if err := json.Unmarshal(msg, &ev); err != nil {
				continue
			}
			b.handleEvent(ev.Event)
		}

		b.maybeAct()
	}
}

type bot struct {
	conn     *websocket.Conn
	logger   *log.Logger
	tier     string
	rng      *rand.Rand
	interval time.Duration

	slots   map[int]bool // slots believed occupied
	orbs    int
	seq     int
	nextAct time.Time
}

func (b *bot) handleEvent(ev protocol.Event) {
	slot := func() (int, bool) {
		f, ok := ev["slot"].(float64)
		return int(f), ok
	}
	switch ev["type"] {
	case protocol.EvCritterSpawned:
		if s, ok := slot(); ok {
			b.slots[s] = true
		}
	case protocol.EvCritterCaught, protocol.EvCritterDespawned:
		if s, ok := slot(); ok {
			delete(b.slots, s)
		}
	case protocol.EvPrizeAwarded:
		b.logger.Printf("won prize %v", ev["prize_id"])
	case protocol.EvActionResult:
		if ok, _ := ev["ok"].(bool); !ok {
			b.logger.Printf("instant %v failed: %v", ev["ref"], ev["code"])
		}
	}
}

// maybeAct buys a batch of orbs when empty, otherwise throws one at a
// random occupied slot. Throttled so the bot does not flood the server.
func (b *bot) maybeAct() {
	if time.Now().Before(b.nextAct) {
		return
	}
	b.nextAct = time.Now().Add(b.interval)
	b.seq++

	if b.orbs == 0 {
		b.send(protocol.InstantReq{
			ID: fmt.Sprintf("buy-%d", b.seq), Type: protocol.InstPurchaseOrbs,
			Tier: b.tier, Qty: 10,
		})
		b.orbs = 10
		return
	}
	if len(b.slots) == 0 {
		return
	}
	targets := make([]int, 0, len(b.slots))
	for s := range b.slots {
		targets = append(targets, s)
	}
	slot := targets[b.rng.Intn(len(targets))]
	b.orbs--
	b.send(protocol.InstantReq{
		ID: fmt.Sprintf("throw-%d", b.seq), Type: protocol.InstThrowOrb,
		Tier: b.tier, Slot: &slot,
	})
}

func (b *bot) send(inst protocol.InstantReq) {
	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Instants:        []protocol.InstantReq{inst},
	}
	if err := b.conn.WriteJSON(act); err != nil {
		b.logger.Printf("send %s: %v", inst.Type, err)
	}
}
