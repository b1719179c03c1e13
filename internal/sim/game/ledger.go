package game

import "time"

type RequestKind uint8

const (
	KindSpawn RequestKind = 0
	KindThrow RequestKind = 1
)

func (k RequestKind) String() string {
	switch k {
	case KindSpawn:
		return "spawn"
	case KindThrow:
		return "throw"
	}
	return "unknown"
}

// PendingRequest records one outstanding randomness request. Entries are
// never deleted; they are the audit trail of every asynchronous operation.
type PendingRequest struct {
	ID        uint64
	Kind      RequestKind
	Initiator string
	Slot      int
	Tier      int
	CritterID uint64
	Seed      [32]byte
	CreatedAt time.Time

	Resolved   bool
	ResolvedAt time.Time
}

// ledger enforces at most one resolution per request id. This is the
// linchpin of exactly-once semantics: downstream effects run only after a
// successful resolve.
type ledger struct {
	requests map[uint64]*PendingRequest
}

func newLedger() ledger {
	return ledger{requests: map[uint64]*PendingRequest{}}
}

func (l *ledger) create(req PendingRequest) error {
	if _, ok := l.requests[req.ID]; ok {
		return ErrDuplicateRequest
	}
	r := req
	l.requests[req.ID] = &r
	return nil
}

func (l *ledger) resolve(id uint64) (*PendingRequest, error) {
	r, ok := l.requests[id]
	if !ok {
		return nil, ErrUnknownRequest
	}
	if r.Resolved {
		return nil, ErrAlreadyResolved
	}
	r.Resolved = true
	r.ResolvedAt = nowUTC()
	return r, nil
}

// unresolve reverts a resolve whose downstream effects failed on an external
// collaborator, so the provider may redeliver. Only the deliver path calls it.
func (l *ledger) unresolve(id uint64) {
	if r, ok := l.requests[id]; ok {
		r.Resolved = false
		r.ResolvedAt = time.Time{}
	}
}

func (l *ledger) get(id uint64) (*PendingRequest, bool) {
	r, ok := l.requests[id]
	return r, ok
}

func (l *ledger) unresolvedCount() int {
	n := 0
	for _, r := range l.requests {
		if !r.Resolved {
			n++
		}
	}
	return n
}
