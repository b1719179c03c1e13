package ws

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"crittergrid.gg/internal/protocol"
	"crittergrid.gg/internal/sim/game"
)

// Auth maps shared-secret tokens to session roles. An empty token field
// disables that role on the websocket surface.
type Auth struct {
	AdminToken    string
	ProviderToken string
}

type Server struct {
	game *game.Game
	auth Auth
	log  *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(g *game.Game, auth Auth, logger *log.Logger) *Server {
	s := &Server{
		game: g,
		auth: auth,
		log:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

type session struct {
	sessionID string
	playerID  string
	role      string
	out       chan []byte
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := s.handshake(conn)
		if sess == nil {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-sess.out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			switch base.Type {
			case protocol.TypeAct:
				var act protocol.ActMsg
				if err := json.Unmarshal(msg, &act); err != nil {
					continue
				}
				if act.ProtocolVersion != protocol.Version {
					continue
				}
				s.game.Inbox() <- game.ActionEnvelope{
					SessionID: sess.sessionID,
					PlayerID:  sess.playerID,
					Role:      sess.role,
					Act:       act,
				}
			case protocol.TypeDeliver:
				s.handleDeliver(sess, msg)
			default:
			}
		}

		// Cleanup.
		s.game.Leave() <- sess.sessionID
	}
}

// handleDeliver authenticates and decodes a fulfillment, then blocks for the
// engine's verdict so the provider gets a synchronous ack on the same socket.
func (s *Server) handleDeliver(sess *session, msg []byte) {
	var d protocol.DeliverMsg
	if err := json.Unmarshal(msg, &d); err != nil {
		return
	}
	if d.ProtocolVersion != protocol.Version {
		return
	}

	ack := func(ok bool, code, message string) {
		ev := protocol.Event{
			"type": protocol.EvActionResult,
			"ref":  d.RequestID,
			"ok":   ok,
			"code": code,
		}
		if message != "" {
			ev["message"] = message
		}
		b, err := json.Marshal(protocol.EventMsg{
			Type:            protocol.TypeEvent,
			ProtocolVersion: protocol.Version,
			Event:           ev,
		})
		if err != nil {
			return
		}
		select {
		case sess.out <- b:
		default:
		}
	}

	if sess.role != protocol.RoleProvider {
		ack(false, protocol.ErrNoPermission, "deliver requires the provider role")
		return
	}

	raw, err := hex.DecodeString(strings.TrimSpace(d.Randomness))
	if err != nil || len(raw) != 64 {
		ack(false, protocol.ErrProtoBadRequest, "randomness must be 64 bytes hex")
		return
	}
	var randomness [64]byte
	copy(randomness[:], raw)

	respCh := make(chan game.DeliverResult, 1)
	s.game.Deliver() <- game.DeliverEnvelope{
		Principal:  sess.playerID,
		RequestID:  d.RequestID,
		Randomness: randomness,
		Resp:       respCh,
	}
	res := <-respCh
	ack(res.OK, res.Code, res.Message)
}

func (s *Server) handshake(conn *websocket.Conn) *session {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return nil
	}
	if hello.PlayerName == "" {
		hello.PlayerName = "player"
	}

	role := protocol.RolePlayer
	if hello.Auth != nil {
		token := strings.TrimSpace(hello.Auth.Token)
		switch {
		case token == "":
		case s.auth.AdminToken != "" && token == s.auth.AdminToken:
			role = protocol.RoleAdmin
		case s.auth.ProviderToken != "" && token == s.auth.ProviderToken:
			role = protocol.RoleProvider
		default:
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad token"), time.Now().Add(time.Second))
			return nil
		}
	}

	maxQ := hello.Capabilities.MaxQueue
	if maxQ <= 0 {
		maxQ = 64
	}
	if maxQ > 1024 {
		maxQ = 1024
	}
	out := make(chan []byte, maxQ)

	respCh := make(chan game.JoinResponse, 1)
	s.game.Join() <- game.JoinRequest{
		Name: hello.PlayerName,
		Role: role,
		Out:  out,
		Resp: respCh,
	}
	resp := <-respCh

	if err := writeJSON(conn, resp.Welcome); err != nil {
		// Joined but never greeted: release the session or it would sit in
		// the engine's client table forever.
		s.game.Leave() <- resp.Welcome.SessionID
		return nil
	}

	return &session{
		sessionID: resp.Welcome.SessionID,
		playerID:  resp.Welcome.PlayerID,
		role:      resp.Welcome.Role,
		out:       out,
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
