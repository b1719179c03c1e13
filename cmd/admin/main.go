// Command admin is the operator's query tool: it reads the sqlite audit
// index and the JSONL event logs, and talks to the server's local admin
// endpoints.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			dbCmd(os.Args[2:])
			return
		case "logs":
			logsCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "fund":
			fundCmd(os.Args[2:])
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: admin <db|logs|state|fund> [flags]")
	os.Exit(2)
}

// logsCmd scans the rotated event logs and prints matching events, newest
// file last.
func logsCmd(args []string) {
	fs := flag.NewFlagSet("logs", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	evType := fs.String("type", "", "event type filter (e.g. CRITTER_CAUGHT)")
	limit := fs.Int("limit", 50, "max events to print (0 = all)")
	_ = fs.Parse(args)

	paths, err := filepath.Glob(filepath.Join(*dataDir, "events", "events-*.jsonl.zst"))
	if err != nil || len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "no event logs found")
		os.Exit(2)
	}
	sort.Strings(paths)

	printed := 0
	for _, p := range paths {
		if *limit > 0 && printed >= *limit {
			break
		}
		f, err := os.Open(p)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open:", err)
			os.Exit(1)
		}
		zr, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			fmt.Fprintln(os.Stderr, "zstd:", err)
			os.Exit(1)
		}
		sc := bufio.NewScanner(zr)
		sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			if *evType != "" {
				var ev struct {
					Type string `json:"type"`
				}
				if err := json.Unmarshal([]byte(line), &ev); err != nil || ev.Type != *evType {
					continue
				}
			}
			fmt.Println(line)
			printed++
			if *limit > 0 && printed >= *limit {
				break
			}
		}
		zr.Close()
		_ = f.Close()
	}
}

func printJSON(v any) {
	b, _ := json.Marshal(v)
	fmt.Println(string(b))
}
