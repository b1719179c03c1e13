package game

import (
	"context"
	"fmt"
	"log"
	"time"

	"crittergrid.gg/internal/protocol"
	"crittergrid.gg/internal/sim/tuning"
)

// Hard caps. Tuning may configure smaller values, never larger.
const (
	HardCapSlots = 20
	MissLimit    = 3
)

// RandomnessSource is the external randomness provider. Request is
// synchronous; fulfillment arrives later as a DeliverEnvelope on the engine's
// Deliver channel and must carry the configured provider principal.
type RandomnessSource interface {
	Request(ctx context.Context, requestID uint64, seed [32]byte) error
}

// VendingService sells one prize per order. The purchased prize is delivered
// out-of-band by a custody transfer into the vault account, which may bypass
// the engine entirely (see RECOVER_PRIZE).
type VendingService interface {
	Purchase(ctx context.Context, qty int, recipient string) (orderID string, err error)
}

// Settlement moves currency between accounts. Convert returns the
// authoritative settlement amount for a payment made in a foreign currency.
type Settlement interface {
	Debit(ctx context.Context, account, currency string, amount uint64) error
	Credit(ctx context.Context, account, currency string, amount uint64) error
	Convert(amount uint64, currency string) (uint64, error)
}

// Custody tracks which account holds each prize.
type Custody interface {
	Holder(prize string) (string, bool)
	Transfer(prize, from, to string) error
}

// EventWriter receives every emitted protocol event (persistence/log).
type EventWriter interface {
	Write(v any) error
}

type Config struct {
	Tuning tuning.Tuning

	// VaultAccount is the custody/settlement account owned by the engine.
	VaultAccount string
	// AuthorityID is the principal recorded as initiator for engine-issued
	// requests (auto-respawns).
	AuthorityID string

	Oracle   RandomnessSource
	Vendor   VendingService
	Settle   Settlement
	Custody  Custody
	Audit    AuditSink
	EventLog EventWriter
	Logger   *log.Logger
}

type JoinRequest struct {
	Name string
	Role string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

type ActionEnvelope struct {
	SessionID string
	PlayerID  string
	Role      string
	Act       protocol.ActMsg
}

// DeliverEnvelope is a randomness fulfillment stamped with the authenticated
// principal by the transport.
type DeliverEnvelope struct {
	Principal  string
	RequestID  uint64
	Randomness [64]byte
	Resp       chan DeliverResult
}

type DeliverResult struct {
	OK      bool
	Code    string
	Message string
}

type clientState struct {
	sessionID string
	playerID  string
	role      string
	out       chan []byte
}

// Game is a single-threaded authoritative engine. All state must be accessed
// only from the loop goroutine: handling one envelope to completion before the
// next is the engine's non-reentrant guard.
type Game struct {
	cfg    Config
	logger *log.Logger

	registry registry
	ledger   ledger
	vault    *PrizeVault
	wallets  map[string]*Wallet
	revenue  RevenueState

	tiers     []tuning.Tier
	maxActive int
	paused    bool

	critterSeq uint64
	requestSeq uint64
	eventSeq   uint64

	clients map[string]*clientState

	join    chan JoinRequest
	leave   chan string
	act     chan ActionEnvelope
	deliver chan DeliverEnvelope
	state   chan stateReq
	stop    chan struct{}
}

func New(cfg Config) (*Game, error) {
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("tuning: %w", err)
	}
	if cfg.Tuning.MaxActive > HardCapSlots {
		return nil, fmt.Errorf("max_active %d exceeds hard cap %d", cfg.Tuning.MaxActive, HardCapSlots)
	}
	if cfg.Oracle == nil || cfg.Settle == nil || cfg.Custody == nil {
		return nil, fmt.Errorf("oracle, settlement and custody are required")
	}
	if cfg.VaultAccount == "" {
		cfg.VaultAccount = "vault"
	}
	if cfg.AuthorityID == "" {
		cfg.AuthorityID = "authority"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(logDiscard{}, "", 0)
	}

	tiers := make([]tuning.Tier, len(cfg.Tuning.Tiers))
	copy(tiers, cfg.Tuning.Tiers)

	g := &Game{
		cfg:       cfg,
		logger:    logger,
		registry:  newRegistry(HardCapSlots, cfg.Tuning.FieldBound),
		ledger:    newLedger(),
		vault:     NewPrizeVault(cfg.Tuning.VaultCapacity),
		wallets:   map[string]*Wallet{},
		tiers:     tiers,
		maxActive: cfg.Tuning.MaxActive,
		clients:   map[string]*clientState{},
		join:      make(chan JoinRequest, 16),
		leave:     make(chan string, 16),
		act:       make(chan ActionEnvelope, 64),
		deliver:   make(chan DeliverEnvelope, 64),
		state:     make(chan stateReq, 8),
		stop:      make(chan struct{}),
	}
	return g, nil
}

func (g *Game) Join() chan<- JoinRequest        { return g.join }
func (g *Game) Leave() chan<- string            { return g.leave }
func (g *Game) Inbox() chan<- ActionEnvelope    { return g.act }
func (g *Game) Deliver() chan<- DeliverEnvelope { return g.deliver }

func (g *Game) nextRequestID() uint64 {
	g.requestSeq++
	return g.requestSeq
}

func (g *Game) nextCritterID() uint64 {
	g.critterSeq++
	return g.critterSeq
}

func (g *Game) tier(name string) (int, tuning.Tier, bool) {
	for i, t := range g.tiers {
		if t.Name == name {
			return i, t, true
		}
	}
	return -1, tuning.Tier{}, false
}

func (g *Game) wallet(player string) *Wallet {
	w := g.wallets[player]
	if w == nil {
		w = newWallet(len(g.tiers))
		g.wallets[player] = w
	}
	return w
}

// makeSeed derives the oracle request seed from the request id and kind, the
// same bytes recorded in the ledger entry for traceability.
func makeSeed(requestID uint64, kind RequestKind) [32]byte {
	var seed [32]byte
	for i := 0; i < 8; i++ {
		seed[i] = byte(requestID >> (8 * i))
	}
	seed[8] = byte(kind)
	copy(seed[24:], "crittergd")
	return seed
}

func nowUTC() time.Time { return time.Now().UTC() }

type logDiscard struct{}

func (logDiscard) Write(p []byte) (int, error) { return len(p), nil }
