package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func stateCmd(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)

	u := strings.TrimRight(strings.TrimSpace(*baseURL), "/") + "/admin/v1/state"
	cl := &http.Client{Timeout: 5 * time.Second}
	resp, err := cl.Get(u)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Println(string(b))
	if resp.StatusCode/100 != 2 {
		os.Exit(1)
	}
}

// fundCmd credits a settlement balance through the server's dev faucet.
func fundCmd(args []string) {
	fs := flag.NewFlagSet("fund", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	account := fs.String("account", "", "settlement account (required)")
	currency := fs.String("currency", "", "currency (default: server's base currency)")
	amount := fs.Uint64("amount", 0, "amount to credit (required)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*account) == "" || *amount == 0 {
		fmt.Fprintln(os.Stderr, "missing -account or -amount")
		os.Exit(2)
	}

	body, _ := json.Marshal(map[string]any{
		"account":  *account,
		"currency": *currency,
		"amount":   *amount,
	})
	u := strings.TrimRight(strings.TrimSpace(*baseURL), "/") + "/admin/v1/fund"
	cl := &http.Client{Timeout: 5 * time.Second}
	resp, err := cl.Post(u, "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Println(string(b))
	if resp.StatusCode/100 != 2 {
		os.Exit(1)
	}
}
