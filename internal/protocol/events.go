package protocol

// Event is a loosely-typed engine event. Keys "seq" (uint64) and "type"
// (string) are always present; everything else is event specific.
type Event map[string]interface{}

// Event types emitted by the engine.
const (
	EvActionResult      = "ACTION_RESULT"
	EvOrbsPurchased     = "ORBS_PURCHASED"
	EvThrowPending      = "THROW_PENDING"
	EvSpawnPending      = "SPAWN_PENDING"
	EvCritterSpawned    = "CRITTER_SPAWNED"
	EvCritterCaught     = "CRITTER_CAUGHT"
	EvCatchMissed       = "CATCH_MISSED"
	EvCritterRelocated  = "CRITTER_RELOCATED"
	EvCritterDespawned  = "CRITTER_DESPAWNED"
	EvPrizeAwarded      = "PRIZE_AWARDED"
	EvPrizeDeposited    = "PRIZE_DEPOSITED"
	EvPrizeWithdrawn    = "PRIZE_WITHDRAWN"
	EvPrizeRecovered    = "PRIZE_RECOVERED"
	EvVendOrdered       = "VEND_ORDERED"
	EvRevenueRouted     = "REVENUE_ROUTED"
	EvRevenueWithdrawn  = "REVENUE_WITHDRAWN"
	EvOrbPriceUpdated   = "ORB_PRICE_UPDATED"
	EvCatchRateUpdated  = "CATCH_RATE_UPDATED"
	EvMaxActiveUpdated  = "MAX_ACTIVE_UPDATED"
	EvPausedUpdated     = "PAUSED_UPDATED"
	EvVendCountRepaired = "VEND_COUNT_REPAIRED"
)
