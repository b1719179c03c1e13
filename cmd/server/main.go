package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"crittergrid.gg/internal/custody"
	"crittergrid.gg/internal/oracle"
	"crittergrid.gg/internal/persistence/indexdb"
	persistlog "crittergrid.gg/internal/persistence/log"
	"crittergrid.gg/internal/settle"
	"crittergrid.gg/internal/sim/game"
	"crittergrid.gg/internal/sim/tuning"
	"crittergrid.gg/internal/transport/ws"
	"crittergrid.gg/internal/vending"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite audit index")

		oracleDelay = flag.Duration("oracle_delay", 500*time.Millisecond, "local randomness provider fulfillment delay (0 disables the local provider)")
		vendorDelay = flag.Duration("vendor_delay", 2*time.Second, "stub vendor delivery delay")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}
	if tune.Auth.ProviderID == "" {
		tune.Auth.ProviderID = "oracle-local"
	}

	_ = os.MkdirAll(*dataDir, 0o755)

	// Optional: queryable audit index (the JSONL event log is the source of truth).
	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open audit index: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertTuning(tune); err != nil {
			logger.Printf("audit index: upsert tuning: %v", err)
		}
	}

	eventLog := persistlog.NewEventLogger(*dataDir)
	defer eventLog.Close()

	cust := custody.NewMem()
	bank := settle.NewMem(nil)

	cfg := game.Config{
		Tuning:   tune,
		Settle:   bank,
		Custody:  cust,
		EventLog: eventLog,
		Logger:   logger,
	}
	if idx != nil {
		cfg.Audit = idx
	}
	cfg.Vendor = vending.NewStub(cust, *vendorDelay, logger)

	// The engine and the local provider reference each other, so the oracle's
	// deliver callback is bound after game.New.
	var g *game.Game
	var localOracle *oracle.Local
	if *oracleDelay > 0 {
		localOracle = oracle.NewLocal(*oracleDelay, func(requestID uint64, randomness [64]byte) {
			g.Deliver() <- game.DeliverEnvelope{
				Principal:  tune.Auth.ProviderID,
				RequestID:  requestID,
				Randomness: randomness,
			}
		}, logger)
		cfg.Oracle = localOracle
		defer localOracle.Close()
	} else {
		cfg.Oracle = oracle.NewRemote(tune.Auth.ProviderID, logger)
	}

	g, err = game.New(cfg)
	if err != nil {
		logger.Fatalf("game: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := g.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("engine stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})

	enableAdminHTTP := envBool("CG_ENABLE_ADMIN_HTTP", true)
	enablePprofHTTP := envBool("CG_ENABLE_PPROF_HTTP", false)
	if enableAdminHTTP {
		// Local-only admin endpoints (read-side plus a dev faucet).
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel2()
			sv, err := g.RequestStateView(ctx2)
			if err != nil {
				http.Error(rw, err.Error(), http.StatusServiceUnavailable)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(sv)
		})
		mux.HandleFunc("/admin/v1/fund", func(rw http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				rw.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			var body struct {
				Account  string `json:"account"`
				Currency string `json:"currency"`
				Amount   uint64 `json:"amount"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Account == "" || body.Amount == 0 {
				http.Error(rw, "bad request", http.StatusBadRequest)
				return
			}
			if body.Currency == "" {
				body.Currency = tune.Currency
			}
			bank.Fund(body.Account, body.Currency, body.Amount)
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "balance": bank.Balance(body.Account, body.Currency)})
		})
		if idx != nil {
			mux.HandleFunc("/admin/v1/index/stats", func(rw http.ResponseWriter, r *http.Request) {
				if !isLoopbackRemote(r.RemoteAddr) {
					http.Error(rw, "forbidden", http.StatusForbidden)
					return
				}
				rw.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(rw).Encode(idx.Stats())
			})
		}
	} else {
		logger.Printf("admin endpoints disabled (CG_ENABLE_ADMIN_HTTP=false)")
	}
	if enablePprofHTTP {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	mux.HandleFunc("/v1/ws", ws.NewServer(g, ws.Auth{
		AdminToken:    tune.Auth.AdminToken,
		ProviderToken: tune.Auth.ProviderToken,
	}, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func envBool(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func isLoopbackRemote(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
