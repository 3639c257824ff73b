package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/goccy/go-json"

	"animehub/internal/logging"
	synchub "animehub/internal/sync"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7070", "TCP event stream address")
	pretty := flag.Bool("pretty", true, "pretty print JSON events")
	flag.Parse()

	logging.Init(logging.Config{Level: "info", Format: "console"})

	for {
		if err := run(*addr, *pretty, os.Stdout); err != nil {
			logging.Warn().Err(err).Msg("sync-client disconnected")
		}
		time.Sleep(1 * time.Second) // auto reconnect
	}
}

func run(addr string, pretty bool, w io.Writer) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	logging.Info().Str("addr", addr).Msg("sync-client connected")
	return tail(conn, pretty, w)
}

// tail copies events from r to w until r is exhausted.
func tail(r io.Reader, pretty bool, w io.Writer) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Bytes()
		if !pretty {
			fmt.Fprintln(w, string(line))
			continue
		}

		var ev synchub.CatalogEvent
		if err := json.Unmarshal(line, &ev); err != nil || ev.Type == "" {
			fmt.Fprintln(w, string(line))
			continue
		}
		b, _ := json.MarshalIndent(ev, "", "  ")
		fmt.Fprintln(w, string(b))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return io.EOF
}
