package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Request validation.
	ErrBadRequest   = "E_BAD_REQUEST"
	ErrInvalidSlot  = "E_INVALID_SLOT"
	ErrInvalidCoord = "E_INVALID_COORD"
	ErrInvalidTier  = "E_INVALID_TIER"
	ErrPaused       = "E_PAUSED"

	// Authorization.
	ErrNoPermission = "E_NO_PERMISSION"

	// Resource exhaustion/shortfall.
	ErrNoResource   = "E_NO_RESOURCE"
	ErrSlotOccupied = "E_SLOT_OCCUPIED"
	ErrSlotEmpty    = "E_SLOT_EMPTY"
	ErrVaultFull    = "E_VAULT_FULL"
	ErrVaultEmpty   = "E_VAULT_EMPTY"

	// Consistency (caller ordering/logic bugs).
	ErrUnknownRequest   = "E_UNKNOWN_REQUEST"
	ErrAlreadyResolved  = "E_ALREADY_RESOLVED"
	ErrDuplicateRequest = "E_DUPLICATE_REQUEST"
	ErrConflict         = "E_CONFLICT"

	// External collaborators.
	ErrExternal = "E_EXTERNAL"
	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:  {},
	ErrBadRequest:       {},
	ErrInvalidSlot:      {},
	ErrInvalidCoord:     {},
	ErrInvalidTier:      {},
	ErrPaused:           {},
	ErrNoPermission:     {},
	ErrNoResource:       {},
	ErrSlotOccupied:     {},
	ErrSlotEmpty:        {},
	ErrVaultFull:        {},
	ErrVaultEmpty:       {},
	ErrUnknownRequest:   {},
	ErrAlreadyResolved:  {},
	ErrDuplicateRequest: {},
	ErrConflict:         {},
	ErrExternal:         {},
	ErrInternal:         {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
