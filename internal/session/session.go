// Package session wires one accepted connection's writer, receiver, and
// connection engine together in dependency order, and owns their teardown.
package session

import (
	"net"

	"github.com/ftpipe-project/ftpipe/internal/conn"
	"github.com/ftpipe-project/ftpipe/internal/recv"
	"github.com/ftpipe-project/ftpipe/internal/wire"
)

// Session owns one accepted connection's full stack: the file writer, the
// receiver that drives it, and the connection engine that drives the
// receiver. It is the thing an acceptor keeps alive and tears down - not
// the raw connection, and not the receiver alone - which keeps ownership
// one-directional: the ack callback below closes over the connection
// without the connection needing to know about the session.
type Session struct {
	writer   *recv.Writer
	receiver *recv.Receiver
	conn     *conn.Conn
}

// Accept constructs a session for nc, rooted at baseDir, in writer ->
// receiver -> connection order, wiring the receiver's ack callback to send
// back over the connection only once all three exist. opts tunes the
// underlying connection engine's buffering and congestion behavior.
func Accept(nc net.Conn, baseDir string, opts conn.Options) (*Session, error) {
	writer, err := recv.NewWriter(baseDir)
	if err != nil {
		return nil, err
	}

	label := nc.RemoteAddr().String()

	s := &Session{writer: writer}
	s.receiver = recv.NewReceiver(label, writer, func(pkt wire.Packet) {
		if s.conn != nil {
			_ = s.conn.Send(pkt)
		}
	})
	s.conn = conn.New(nc, label, s.receiver, opts)

	return s, nil
}

// Serve runs the connection's read loop until disconnect. It blocks the
// calling goroutine.
func (s *Session) Serve() {
	s.conn.Serve()
}

// Close tears the session down; the connection's own Close already
// unconditionally closes the receiver (and, through it, the writer).
func (s *Session) Close() error {
	return s.conn.Close()
}
