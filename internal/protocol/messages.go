package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	PlayerName      string     `json:"player_name,omitempty"`
	Capabilities    HelloCaps  `json:"capabilities,omitempty"`
	Auth            *HelloAuth `json:"auth,omitempty"`
}

type HelloCaps struct {
	MaxQueue int `json:"max_queue,omitempty"`
}

type HelloAuth struct {
	Token string `json:"token,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	SessionID       string     `json:"session_id"`
	PlayerID        string     `json:"player_id,omitempty"`
	Role            string     `json:"role"`
	GameParams      GameParams `json:"game_params"`
}

// GameParams mirrors the tier table and field bounds so clients can render
// prices without a separate catalog fetch.
type GameParams struct {
	Tiers      []TierParams `json:"tiers"`
	MaxActive  int          `json:"max_active"`
	FieldBound int          `json:"field_bound"`
	Currency   string       `json:"currency"`
	Paused     bool         `json:"paused"`
}

type TierParams struct {
	Tier      string `json:"tier"`
	Price     uint64 `json:"price"`
	CatchRate int    `json:"catch_rate"`
}

// ACT (client -> server): a batch of instants from one principal.
type ActMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Instants        []InstantReq `json:"instants,omitempty"`
}

// InstantReq is a flat union of the parameters every instant type can carry.
// Pointer fields distinguish "absent" from a meaningful zero (slot 0,
// coordinate 0, rate 0).
type InstantReq struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	// PURCHASE_ORBS / THROW_ORB
	Tier     string `json:"tier,omitempty"`
	Qty      int    `json:"qty,omitempty"`
	Currency string `json:"currency,omitempty"`

	// slot-addressed ops
	Slot *int `json:"slot,omitempty"`
	X    *int `json:"x,omitempty"`
	Y    *int `json:"y,omitempty"`

	// prize ops
	PrizeID string `json:"prize_id,omitempty"`

	// revenue / tier admin
	Amount    uint64 `json:"amount,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Price     uint64 `json:"price,omitempty"`
	Rate      *int   `json:"rate,omitempty"`
	Max       int    `json:"max,omitempty"`
	Paused    *bool  `json:"paused,omitempty"`
	Count     *int   `json:"count,omitempty"`
}

// Instant types (player surface).
const (
	InstPurchaseOrbs = "PURCHASE_ORBS"
	InstThrowOrb     = "THROW_ORB"
)

// Instant types (admin surface).
const (
	InstSpawn           = "SPAWN"
	InstForceSpawn      = "FORCE_SPAWN"
	InstDespawn         = "DESPAWN"
	InstReposition      = "REPOSITION"
	InstDepositPrize    = "DEPOSIT_PRIZE"
	InstWithdrawPrize   = "WITHDRAW_PRIZE"
	InstWithdrawRevenue = "WITHDRAW_REVENUE"
	InstSetOrbPrice     = "SET_ORB_PRICE"
	InstSetCatchRate    = "SET_CATCH_RATE"
	InstSetMaxActive    = "SET_MAX_ACTIVE"
	InstSetPaused       = "SET_PAUSED"
	InstRecoverPrize    = "RECOVER_PRIZE"
	InstSetPendingVend  = "SET_PENDING_VEND"
)

// DELIVER (provider -> server): randomness fulfillment for a pending request.
// Randomness is 64 bytes, hex encoded (128 chars).
type DeliverMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       uint64 `json:"request_id"`
	Randomness      string `json:"randomness"`
}

// EVENT (server -> client): a single engine event.
type EventMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Event           Event  `json:"event"`
}
