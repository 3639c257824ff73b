package main

import (
	"bufio"
	"fmt"
	"io"
	"net"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"animehub/internal/logging"
	synchub "animehub/internal/sync"
)

func listenTCP(addr string, w io.Writer) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()
	logging.Info().Str("addr", addr).Msg("connected to event stream")

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		printEvent(w, sc.Bytes())
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return io.EOF
}

func watchWebSocket(wsURL string, w io.Writer) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()
	logging.Info().Str("url", wsURL).Msg("watching catalog events")

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		printEvent(w, msg)
	}
}

// printEvent renders catalog events as one line each; anything else is
// printed as received.
func printEvent(w io.Writer, line []byte) {
	var ev synchub.CatalogEvent
	if err := json.Unmarshal(line, &ev); err != nil || ev.Entity == "" {
		fmt.Fprintln(w, string(line))
		return
	}
	fmt.Fprintf(w, "%s  %-17s #%d %s\n", ev.At.Local().Format("15:04:05"), ev.Type, ev.ID, ev.Label)
}
