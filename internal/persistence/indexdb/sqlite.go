// Package indexdb maintains a queryable sqlite index of the engine's audit
// trail. It is a secondary store: the JSONL event logs remain the source of
// truth, and the index writer may drop rows under backpressure rather than
// stall the engine loop.
package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"crittergrid.gg/internal/sim/game"
	"crittergrid.gg/internal/sim/tuning"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropEvent      atomic.Uint64
	dropRequest    atomic.Uint64
	dropResolution atomic.Uint64
	dropPurchase   atomic.Uint64
	dropVend       atomic.Uint64
	dropAward      atomic.Uint64
}

type reqKind int

const (
	reqEvent reqKind = iota + 1
	reqRequest
	reqResolution
	reqPurchase
	reqVend
	reqAward
)

type req struct {
	kind reqKind

	eventSeq  uint64
	eventType string
	eventRaw  string

	request    game.RequestRow
	resolution game.ResolutionRow
	purchase   game.PurchaseRow
	vend       game.VendOrderRow
	award      game.AwardRow
}

// Stats is a point-in-time view of the writer queue.
type Stats struct {
	QueueDepth    int
	QueueCapacity int

	DropEventTotal      uint64
	DropRequestTotal    uint64
	DropResolutionTotal uint64
	DropPurchaseTotal   uint64
	DropVendTotal       uint64
	DropAwardTotal      uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// High buffer: throw resolutions can burst when a provider batches
		// deliveries; absorb them without stalling the engine.
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	// NORMAL is a decent durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY,
			type TEXT NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_type_seq ON events(type, seq);`,
		`CREATE TABLE IF NOT EXISTS requests (
			id INTEGER PRIMARY KEY,
			kind TEXT NOT NULL,
			initiator TEXT NOT NULL,
			slot INTEGER NOT NULL,
			tier TEXT,
			critter_id INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_requests_initiator ON requests(initiator, id);`,
		`CREATE TABLE IF NOT EXISTS resolutions (
			id INTEGER PRIMARY KEY,
			outcome TEXT NOT NULL,
			resolved_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_resolutions_outcome ON resolutions(outcome, id);`,
		`CREATE TABLE IF NOT EXISTS purchases (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			player TEXT NOT NULL,
			tier TEXT NOT NULL,
			qty INTEGER NOT NULL,
			currency TEXT NOT NULL,
			total INTEGER NOT NULL,
			fee INTEGER NOT NULL,
			funding INTEGER NOT NULL,
			at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_player ON purchases(player, rowid);`,
		`CREATE TABLE IF NOT EXISTS vend_orders (
			order_id TEXT PRIMARY KEY,
			cost INTEGER NOT NULL,
			at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS awards (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			player TEXT NOT NULL,
			prize TEXT NOT NULL,
			critter_id INTEGER NOT NULL,
			at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_awards_player ON awards(player, rowid);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	st := Stats{
		DropEventTotal:      s.dropEvent.Load(),
		DropRequestTotal:    s.dropRequest.Load(),
		DropResolutionTotal: s.dropResolution.Load(),
		DropPurchaseTotal:   s.dropPurchase.Load(),
		DropVendTotal:       s.dropVend.Load(),
		DropAwardTotal:      s.dropAward.Load(),
	}
	st.QueueDepth = len(s.ch)
	st.QueueCapacity = cap(s.ch)
	return st
}

func (s *SQLiteIndex) enqueue(r req, drops *atomic.Uint64) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- r:
	default:
		// Drop if the indexer falls behind; JSONL logs remain the source of truth.
		drops.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) RecordEvent(seq uint64, evType string, raw []byte) error {
	if s == nil {
		return nil
	}
	return s.enqueue(req{kind: reqEvent, eventSeq: seq, eventType: evType, eventRaw: string(raw)}, &s.dropEvent)
}

func (s *SQLiteIndex) RecordRequest(r game.RequestRow) error {
	if s == nil {
		return nil
	}
	return s.enqueue(req{kind: reqRequest, request: r}, &s.dropRequest)
}

func (s *SQLiteIndex) RecordResolution(r game.ResolutionRow) error {
	if s == nil {
		return nil
	}
	return s.enqueue(req{kind: reqResolution, resolution: r}, &s.dropResolution)
}

func (s *SQLiteIndex) RecordPurchase(r game.PurchaseRow) error {
	if s == nil {
		return nil
	}
	return s.enqueue(req{kind: reqPurchase, purchase: r}, &s.dropPurchase)
}

func (s *SQLiteIndex) RecordVendOrder(r game.VendOrderRow) error {
	if s == nil {
		return nil
	}
	return s.enqueue(req{kind: reqVend, vend: r}, &s.dropVend)
}

func (s *SQLiteIndex) RecordAward(r game.AwardRow) error {
	if s == nil {
		return nil
	}
	return s.enqueue(req{kind: reqAward, award: r}, &s.dropAward)
}

// UpsertTuning stores the tuning values actually applied (canonical JSON),
// keyed by digest, so an operator can recover the exact parameters a run used.
func (s *SQLiteIndex) UpsertTuning(tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(tune)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(b)
	digest := hex.EncodeToString(sum[:])
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('tuning_digest',?)`, digest); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('tuning_json',?)`, string(b)); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('tuning_updated_at',?)`, now); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	// Prepared statements (on db; executed within tx).
	insertEvent, _ := s.db.Prepare(`INSERT OR REPLACE INTO events(seq,type,raw_json) VALUES(?,?,?)`)
	insertRequest, _ := s.db.Prepare(`INSERT OR REPLACE INTO requests(id,kind,initiator,slot,tier,critter_id,created_at) VALUES(?,?,?,?,?,?,?)`)
	insertResolution, _ := s.db.Prepare(`INSERT OR REPLACE INTO resolutions(id,outcome,resolved_at) VALUES(?,?,?)`)
	insertPurchase, _ := s.db.Prepare(`INSERT INTO purchases(player,tier,qty,currency,total,fee,funding,at) VALUES(?,?,?,?,?,?,?,?)`)
	insertVend, _ := s.db.Prepare(`INSERT OR REPLACE INTO vend_orders(order_id,cost,at) VALUES(?,?,?)`)
	insertAward, _ := s.db.Prepare(`INSERT INTO awards(player,prize,critter_id,at) VALUES(?,?,?,?)`)
	defer func() {
		if insertEvent != nil {
			_ = insertEvent.Close()
		}
		if insertRequest != nil {
			_ = insertRequest.Close()
		}
		if insertResolution != nil {
			_ = insertResolution.Close()
		}
		if insertPurchase != nil {
			_ = insertPurchase.Close()
		}
		if insertVend != nil {
			_ = insertVend.Close()
		}
		if insertAward != nil {
			_ = insertAward.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			// If we can't start a tx, we can't do much; sleep a bit.
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	ts := func(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqEvent:
			if insertEvent != nil {
				if _, err := tx.Stmt(insertEvent).Exec(int64(r.eventSeq), r.eventType, r.eventRaw); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqRequest:
			if insertRequest != nil {
				q := r.request
				if _, err := tx.Stmt(insertRequest).Exec(
					int64(q.ID), q.Kind, q.Initiator, q.Slot, q.Tier, int64(q.CritterID), ts(q.CreatedAt),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqResolution:
			if insertResolution != nil {
				q := r.resolution
				if _, err := tx.Stmt(insertResolution).Exec(int64(q.ID), q.Outcome, ts(q.ResolvedAt)); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqPurchase:
			if insertPurchase != nil {
				q := r.purchase
				if _, err := tx.Stmt(insertPurchase).Exec(
					q.Player, q.Tier, q.Qty, q.Currency, int64(q.Total), int64(q.Fee), int64(q.Funding), ts(q.At),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqVend:
			if insertVend != nil {
				q := r.vend
				if _, err := tx.Stmt(insertVend).Exec(q.OrderID, int64(q.Cost), ts(q.At)); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqAward:
			if insertAward != nil {
				q := r.award
				if _, err := tx.Stmt(insertAward).Exec(q.Player, q.Prize, int64(q.CritterID), ts(q.At)); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		flushIfNeeded()
	}

	commit()
}
