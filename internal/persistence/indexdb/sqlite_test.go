package indexdb

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"crittergrid.gg/internal/sim/game"
)

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqEvent}

	_ = s.RecordEvent(1, "ACTION_RESULT", []byte(`{}`))
	_ = s.RecordRequest(game.RequestRow{ID: 1})
	_ = s.RecordResolution(game.ResolutionRow{ID: 1})
	_ = s.RecordPurchase(game.PurchaseRow{Player: "p1"})
	_ = s.RecordVendOrder(game.VendOrderRow{OrderID: "o1"})
	_ = s.RecordAward(game.AwardRow{Player: "p1"})

	st := s.Stats()
	if st.DropEventTotal != 1 {
		t.Fatalf("DropEventTotal=%d want=1", st.DropEventTotal)
	}
	if st.DropRequestTotal != 1 {
		t.Fatalf("DropRequestTotal=%d want=1", st.DropRequestTotal)
	}
	if st.DropResolutionTotal != 1 {
		t.Fatalf("DropResolutionTotal=%d want=1", st.DropResolutionTotal)
	}
	if st.DropPurchaseTotal != 1 {
		t.Fatalf("DropPurchaseTotal=%d want=1", st.DropPurchaseTotal)
	}
	if st.DropVendTotal != 1 {
		t.Fatalf("DropVendTotal=%d want=1", st.DropVendTotal)
	}
	if st.DropAwardTotal != 1 {
		t.Fatalf("DropAwardTotal=%d want=1", st.DropAwardTotal)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_WritesRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}

	now := time.Now()
	_ = idx.RecordEvent(1, "CRITTER_SPAWNED", []byte(`{"type":"CRITTER_SPAWNED","seq":1}`))
	_ = idx.RecordEvent(2, "ORBS_PURCHASED", []byte(`{"type":"ORBS_PURCHASED","seq":2}`))
	_ = idx.RecordRequest(game.RequestRow{ID: 7, Kind: "throw", Initiator: "p1", Slot: 3, Tier: "basic", CritterID: 11, CreatedAt: now})
	_ = idx.RecordResolution(game.ResolutionRow{ID: 7, Outcome: "caught", ResolvedAt: now})
	_ = idx.RecordPurchase(game.PurchaseRow{Player: "p1", Tier: "basic", Qty: 5, Currency: "GRID", Total: 500, Fee: 15, Funding: 485, At: now})
	_ = idx.RecordVendOrder(game.VendOrderRow{OrderID: "ord-1", Cost: 51, At: now})
	_ = idx.RecordAward(game.AwardRow{Player: "p1", Prize: "prize-1", CritterID: 11, At: now})

	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	count := func(table string) int {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		return n
	}
	if n := count("events"); n != 2 {
		t.Fatalf("events rows=%d want=2", n)
	}
	for _, table := range []string{"requests", "resolutions", "purchases", "vend_orders", "awards"} {
		if n := count(table); n != 1 {
			t.Fatalf("%s rows=%d want=1", table, n)
		}
	}

	var outcome string
	if err := db.QueryRow(`SELECT outcome FROM resolutions WHERE id=7`).Scan(&outcome); err != nil {
		t.Fatalf("query resolution: %v", err)
	}
	if outcome != "caught" {
		t.Fatalf("outcome=%q want=caught", outcome)
	}
}
