// Command ftpipe-send transmits a single file or an entire directory tree
// to a running ftpipe-recv instance.
package main

import (
	"fmt"
	"log"
	"net"
	"os"

	"github.com/ftpipe-project/ftpipe/config"
	"github.com/ftpipe-project/ftpipe/internal/conn"
	"github.com/ftpipe-project/ftpipe/internal/send"
	"github.com/ftpipe-project/ftpipe/internal/walk"
	"github.com/ftpipe-project/ftpipe/internal/wire"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <path_to_send> <server_address>\n", os.Args[0])
		os.Exit(1)
	}

	sourcePath := os.Args[1]
	serverAddr := os.Args[2]

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	entries, err := walk.Walk(sourcePath)
	if err != nil {
		log.Fatalf("discovering files under %s: %v", sourcePath, err)
	}
	if len(entries) == 0 {
		log.Fatalf("nothing to send under %s", sourcePath)
	}

	nc, err := net.Dial("tcp", serverAddr)
	if err != nil {
		log.Fatalf("dialing %s: %v", serverAddr, err)
	}

	ackHandler := &ackLogger{}
	c := conn.New(nc, serverAddr, ackHandler, cfg.ConnOptions())
	go c.Serve()
	defer c.Close()

	if err := send.Handshake(c); err != nil {
		log.Fatalf("handshake: %v", err)
	}

	for _, entry := range entries {
		log.Printf("ftpipe-send: sending %s as %s", entry.AbsPath, entry.RelName)
		if err := send.File(c, entry.AbsPath, entry.RelName); err != nil {
			log.Fatalf("sending %s: %v", entry.AbsPath, err)
		}
	}

	log.Printf("ftpipe-send: done, %d file(s) sent", len(entries))
}

// ackLogger satisfies conn.Handler just enough to observe the receiver's
// Ack/ErrorMsg replies; the sender drives the transfer itself and has no
// state machine of its own to feed them into.
type ackLogger struct{}

func (a *ackLogger) HandleFrame(frame wire.Frame) {
	pkt, err := wire.Decode(frame.PacketKind, frame.Payload)
	if err != nil {
		log.Printf("ftpipe-send: malformed reply: %v", err)
		return
	}
	switch p := pkt.(type) {
	case wire.Ack:
		log.Printf("ftpipe-send: peer acked %d bytes", p.Offset)
	case wire.ErrorMsg:
		log.Printf("ftpipe-send: peer rejected transfer: %s", p.Message)
	}
}

func (a *ackLogger) Close() error { return nil }
