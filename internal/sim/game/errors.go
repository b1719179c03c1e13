package game

import (
	"errors"

	"crittergrid.gg/internal/protocol"
)

var (
	ErrInvalidTier      = errors.New("invalid orb tier")
	ErrZeroQuantity     = errors.New("quantity must be greater than 0")
	ErrPurchaseTooLarge = errors.New("purchase exceeds per-transaction ceiling")
	ErrPaused           = errors.New("game is paused")

	ErrInvalidSlot  = errors.New("invalid slot index")
	ErrSlotOccupied = errors.New("slot is already occupied")
	ErrSlotEmpty    = errors.New("slot is not occupied")
	ErrInvalidCoord = errors.New("coordinate out of field bounds")
	ErrMaxActive    = errors.New("max active critters reached")

	ErrInsufficientOrbs = errors.New("insufficient orb balance")

	ErrVaultFull     = errors.New("prize vault is full")
	ErrVaultEmpty    = errors.New("prize vault is empty")
	ErrPrizeNotFound = errors.New("prize not in vault")
	ErrPrizeHeld     = errors.New("prize already in vault")
	ErrNotInCustody  = errors.New("prize not in vault custody")

	ErrUnknownRequest   = errors.New("unknown request id")
	ErrAlreadyResolved  = errors.New("request already resolved")
	ErrDuplicateRequest = errors.New("duplicate request id")

	ErrInsufficientRevenue = errors.New("insufficient accrued fees")
	ErrNotProvider         = errors.New("caller is not the randomness provider")
	ErrNoPermission        = errors.New("caller lacks permission")

	ErrZeroPrice        = errors.New("price must be greater than 0")
	ErrInvalidCatchRate = errors.New("catch rate out of range 0..100")
	ErrInvalidMaxActive = errors.New("max active out of range")
)

// codeOf maps core errors to wire error codes. Unmapped errors (external
// collaborator failures) report as E_EXTERNAL.
func codeOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidTier):
		return protocol.ErrInvalidTier
	case errors.Is(err, ErrZeroQuantity),
		errors.Is(err, ErrPurchaseTooLarge),
		errors.Is(err, ErrZeroPrice),
		errors.Is(err, ErrInvalidCatchRate),
		errors.Is(err, ErrInvalidMaxActive):
		return protocol.ErrBadRequest
	case errors.Is(err, ErrPaused):
		return protocol.ErrPaused
	case errors.Is(err, ErrInvalidSlot):
		return protocol.ErrInvalidSlot
	case errors.Is(err, ErrSlotOccupied):
		return protocol.ErrSlotOccupied
	case errors.Is(err, ErrSlotEmpty):
		return protocol.ErrSlotEmpty
	case errors.Is(err, ErrInvalidCoord):
		return protocol.ErrInvalidCoord
	case errors.Is(err, ErrMaxActive):
		return protocol.ErrNoResource
	case errors.Is(err, ErrInsufficientOrbs),
		errors.Is(err, ErrInsufficientRevenue),
		errors.Is(err, ErrPrizeNotFound):
		return protocol.ErrNoResource
	case errors.Is(err, ErrVaultFull):
		return protocol.ErrVaultFull
	case errors.Is(err, ErrVaultEmpty):
		return protocol.ErrVaultEmpty
	case errors.Is(err, ErrPrizeHeld),
		errors.Is(err, ErrNotInCustody):
		return protocol.ErrConflict
	case errors.Is(err, ErrUnknownRequest):
		return protocol.ErrUnknownRequest
	case errors.Is(err, ErrAlreadyResolved):
		return protocol.ErrAlreadyResolved
	case errors.Is(err, ErrDuplicateRequest):
		return protocol.ErrDuplicateRequest
	case errors.Is(err, ErrNotProvider), errors.Is(err, ErrNoPermission):
		return protocol.ErrNoPermission
	default:
		return protocol.ErrExternal
	}
}
