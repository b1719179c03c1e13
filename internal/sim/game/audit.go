package game

import "time"

// AuditSink receives durable audit rows. Implementations must not block the
// caller (the engine loop); the sqlite index feeds a buffered writer queue.
type AuditSink interface {
	RecordEvent(seq uint64, evType string, raw []byte) error
	RecordRequest(r RequestRow) error
	RecordResolution(r ResolutionRow) error
	RecordPurchase(r PurchaseRow) error
	RecordVendOrder(r VendOrderRow) error
	RecordAward(r AwardRow) error
}

type RequestRow struct {
	ID        uint64
	Kind      string
	Initiator string
	Slot      int
	Tier      string
	CritterID uint64
	CreatedAt time.Time
}

type ResolutionRow struct {
	ID         uint64
	Outcome    string // "caught", "missed", "relocated", "spawned", "discarded"
	ResolvedAt time.Time
}

type PurchaseRow struct {
	Player   string
	Tier     string
	Qty      int
	Currency string
	Total    uint64
	Fee      uint64
	Funding  uint64
	At       time.Time
}

type VendOrderRow struct {
	OrderID string
	Cost    uint64
	At      time.Time
}

type AwardRow struct {
	Player    string
	Prize     string
	CritterID uint64
	At        time.Time
}
