package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (default: <data>/index.db)")
	limit := fs.Int("limit", 20, "result limit")
	player := fs.String("player", "", "player filter (purchases, awards)")
	evType := fs.String("type", "", "event type filter (events)")
	_ = fs.Parse(args)

	q := "events"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}
	if *limit <= 0 {
		*limit = 20
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index.db")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	switch q {
	case "events":
		query := `SELECT seq,type,raw_json FROM events ORDER BY seq DESC LIMIT ?`
		qargs := []any{*limit}
		if *evType != "" {
			query = `SELECT seq,type,raw_json FROM events WHERE type=? ORDER BY seq DESC LIMIT ?`
			qargs = []any{*evType, *limit}
		}
		rows, err := db.Query(query, qargs...)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Seq  int64  `json:"seq"`
				Type string `json:"type"`
				Raw  string `json:"raw_json"`
			}
			if err := rows.Scan(&r.Seq, &r.Type, &r.Raw); err != nil {
				fmt.Fprintln(os.Stderr, "scan:", err)
				os.Exit(1)
			}
			printJSON(r)
		}
		checkRows(rows.Err())

	case "requests":
		rows, err := db.Query(`
			SELECT r.id, r.kind, r.initiator, r.slot, r.tier, r.critter_id, r.created_at,
			       COALESCE(res.outcome, ''), COALESCE(res.resolved_at, '')
			FROM requests r
			LEFT JOIN resolutions res ON res.id = r.id
			ORDER BY r.id DESC LIMIT ?`, *limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				ID         int64  `json:"id"`
				Kind       string `json:"kind"`
				Initiator  string `json:"initiator"`
				Slot       int    `json:"slot"`
				Tier       string `json:"tier"`
				CritterID  int64  `json:"critter_id"`
				CreatedAt  string `json:"created_at"`
				Outcome    string `json:"outcome,omitempty"`
				ResolvedAt string `json:"resolved_at,omitempty"`
			}
			if err := rows.Scan(&r.ID, &r.Kind, &r.Initiator, &r.Slot, &r.Tier, &r.CritterID, &r.CreatedAt, &r.Outcome, &r.ResolvedAt); err != nil {
				fmt.Fprintln(os.Stderr, "scan:", err)
				os.Exit(1)
			}
			printJSON(r)
		}
		checkRows(rows.Err())

	case "pending":
		rows, err := db.Query(`
			SELECT r.id, r.kind, r.initiator, r.slot, r.tier, r.critter_id, r.created_at
			FROM requests r
			LEFT JOIN resolutions res ON res.id = r.id
			WHERE res.id IS NULL
			ORDER BY r.id LIMIT ?`, *limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				ID        int64  `json:"id"`
				Kind      string `json:"kind"`
				Initiator string `json:"initiator"`
				Slot      int    `json:"slot"`
				Tier      string `json:"tier"`
				CritterID int64  `json:"critter_id"`
				CreatedAt string `json:"created_at"`
			}
			if err := rows.Scan(&r.ID, &r.Kind, &r.Initiator, &r.Slot, &r.Tier, &r.CritterID, &r.CreatedAt); err != nil {
				fmt.Fprintln(os.Stderr, "scan:", err)
				os.Exit(1)
			}
			printJSON(r)
		}
		checkRows(rows.Err())

	case "purchases":
		query := `SELECT player,tier,qty,currency,total,fee,funding,at FROM purchases ORDER BY rowid DESC LIMIT ?`
		qargs := []any{*limit}
		if *player != "" {
			query = `SELECT player,tier,qty,currency,total,fee,funding,at FROM purchases WHERE player=? ORDER BY rowid DESC LIMIT ?`
			qargs = []any{*player, *limit}
		}
		rows, err := db.Query(query, qargs...)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Player   string `json:"player"`
				Tier     string `json:"tier"`
				Qty      int    `json:"qty"`
				Currency string `json:"currency"`
				Total    int64  `json:"total"`
				Fee      int64  `json:"fee"`
				Funding  int64  `json:"funding"`
				At       string `json:"at"`
			}
			if err := rows.Scan(&r.Player, &r.Tier, &r.Qty, &r.Currency, &r.Total, &r.Fee, &r.Funding, &r.At); err != nil {
				fmt.Fprintln(os.Stderr, "scan:", err)
				os.Exit(1)
			}
			printJSON(r)
		}
		checkRows(rows.Err())

	case "vend_orders":
		rows, err := db.Query(`SELECT order_id,cost,at FROM vend_orders ORDER BY at DESC LIMIT ?`, *limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				OrderID string `json:"order_id"`
				Cost    int64  `json:"cost"`
				At      string `json:"at"`
			}
			if err := rows.Scan(&r.OrderID, &r.Cost, &r.At); err != nil {
				fmt.Fprintln(os.Stderr, "scan:", err)
				os.Exit(1)
			}
			printJSON(r)
		}
		checkRows(rows.Err())

	case "awards":
		query := `SELECT player,prize,critter_id,at FROM awards ORDER BY rowid DESC LIMIT ?`
		qargs := []any{*limit}
		if *player != "" {
			query = `SELECT player,prize,critter_id,at FROM awards WHERE player=? ORDER BY rowid DESC LIMIT ?`
			qargs = []any{*player, *limit}
		}
		rows, err := db.Query(query, qargs...)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Player    string `json:"player"`
				Prize     string `json:"prize"`
				CritterID int64  `json:"critter_id"`
				At        string `json:"at"`
			}
			if err := rows.Scan(&r.Player, &r.Prize, &r.CritterID, &r.At); err != nil {
				fmt.Fprintln(os.Stderr, "scan:", err)
				os.Exit(1)
			}
			printJSON(r)
		}
		checkRows(rows.Err())

	case "tuning":
		var raw string
		if err := db.QueryRow(`SELECT value FROM meta WHERE key='tuning_json'`).Scan(&raw); err != nil {
			fmt.Fprintln(os.Stderr, "scan:", err)
			os.Exit(1)
		}
		fmt.Println(raw)

	default:
		fmt.Fprintln(os.Stderr, "unknown query:", q)
		fmt.Fprintln(os.Stderr, "queries: events, requests, pending, purchases, vend_orders, awards, tuning")
		os.Exit(2)
	}
}

func checkRows(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "rows:", err)
		os.Exit(1)
	}
}
