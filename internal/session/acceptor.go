package session

import (
	"log"
	"net"

	"github.com/ftpipe-project/ftpipe/internal/conn"
)

// Acceptor listens on one address and spins up a Session per accepted
// connection.
type Acceptor struct {
	listener net.Listener
	baseDir  string
	connOpts conn.Options
}

// Listen starts listening on addr for connections that will all write into
// baseDir. connOpts tunes every accepted connection's buffering and
// congestion behavior.
func Listen(addr, baseDir string, connOpts conn.Options) (*Acceptor, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Acceptor{listener: ln, baseDir: baseDir, connOpts: connOpts}, nil
}

// Addr returns the listener's bound address.
func (a *Acceptor) Addr() net.Addr {
	return a.listener.Addr()
}

// Serve accepts connections until the listener is closed, spawning one
// goroutine per session. It blocks the calling goroutine.
func (a *Acceptor) Serve() error {
	for {
		nc, err := a.listener.Accept()
		if err != nil {
			return err
		}
		go a.handle(nc)
	}
}

func (a *Acceptor) handle(nc net.Conn) {
	sess, err := Accept(nc, a.baseDir, a.connOpts)
	if err != nil {
		log.Printf("[%s]: failed to start session: %v", nc.RemoteAddr(), err)
		nc.Close()
		return
	}
	log.Printf("[%s]: session started", nc.RemoteAddr())
	sess.Serve()
	log.Printf("[%s]: session ended", nc.RemoteAddr())
}

// Close stops accepting new connections.
func (a *Acceptor) Close() error {
	return a.listener.Close()
}
