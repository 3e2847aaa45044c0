// Package conn implements the asynchronous connection engine: a read loop
// that accumulates bytes and repeatedly extracts whole frames, and a
// serialized write queue with a congestion signal for sender-side
// backpressure.
package conn

import (
	"errors"
	"io"
	"log"
	"net"
	"sync"
	"sync/atomic"

	"github.com/ftpipe-project/ftpipe/internal/wire"
)

// DefaultCongestionThreshold is the queued-byte count above which
// IsCongested reports true and a sender driver should pause, when Options
// leaves CongestionThreshold unset.
const DefaultCongestionThreshold = 1 << 20 // 1 MiB

// DefaultReadBufferSize is the size of the reusable fixed buffer each Read
// call fills, when Options leaves ReadBufferSize unset.
const DefaultReadBufferSize = 8 * 1024

// Options tunes one connection's buffering and backpressure behavior. The
// zero value selects the package defaults.
type Options struct {
	// CongestionThreshold overrides DefaultCongestionThreshold.
	CongestionThreshold int64
	// ReadBufferSize overrides DefaultReadBufferSize.
	ReadBufferSize int
}

func (o Options) withDefaults() Options {
	if o.CongestionThreshold <= 0 {
		o.CongestionThreshold = DefaultCongestionThreshold
	}
	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = DefaultReadBufferSize
	}
	return o
}

// Handler receives parsed frames and is torn down on disconnect. A
// *recv.Receiver satisfies this directly.
type Handler interface {
	HandleFrame(frame wire.Frame)
	Close() error
}

// Conn drives one accepted or dialed net.Conn: a read loop that feeds an
// incoming byte buffer and dispatches whole frames to a Handler, and a
// write queue serialized onto this connection's own goroutine.
type Conn struct {
	nc      net.Conn
	label   string
	handler Handler

	congestionThreshold int64

	incoming incomingBuffer
	readBuf  []byte

	mu       sync.Mutex
	queue    [][]byte
	draining bool

	queuedBytes atomic.Int64

	closeOnce sync.Once
	closed    chan struct{}
}

// New wires nc to handler. label is used only for log messages, in the
// "[addr]: ..." convention used throughout this package.
func New(nc net.Conn, label string, handler Handler, opts Options) *Conn {
	opts = opts.withDefaults()
	return &Conn{
		nc:                  nc,
		label:               label,
		handler:             handler,
		congestionThreshold: opts.CongestionThreshold,
		readBuf:             make([]byte, opts.ReadBufferSize),
		closed:              make(chan struct{}),
	}
}

// Serve runs the read loop until the connection is closed or a read fails.
// It blocks the calling goroutine - callers run it as `go c.Serve()`.
func (c *Conn) Serve() {
	defer c.shutdown()
	for {
		n, err := c.nc.Read(c.readBuf)
		if err != nil {
			if err != io.EOF {
				log.Printf("[%s]: read error: %v", c.label, err)
			}
			return
		}
		c.incoming.append(c.readBuf[:n])
		if !c.extract() {
			return
		}
	}
}

// extract drains every whole frame currently sitting in the incoming
// buffer, handing each to the handler before removing its bytes - the
// handler sees a live view into the buffer and must finish using it before
// consume() shifts the buffer out from under it. It returns false if a
// protocol violation (oversized declared length) forced the connection
// closed.
func (c *Conn) extract() bool {
	for {
		buf := c.incoming.bytes()
		frame, ok := wire.TryParse(buf)
		if !ok {
			if len(buf) >= wire.FrameHeaderSize {
				if _, err := wire.Parse(buf); errors.Is(err, wire.ErrPayloadTooLarge) {
					log.Printf("[%s]: closing connection: %v", c.label, err)
					return false
				}
			}
			return true
		}

		c.dispatch(frame)
		c.incoming.consume(frame.TotalSize())
	}
}

// dispatch invokes the handler under a recover guard: a malformed message
// that the handler's own decoding missed should not tear down the whole
// session. The panic is logged and the next frame is processed normally.
func (c *Conn) dispatch(frame wire.Frame) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[%s]: recovered from panic handling %s frame: %v", c.label, frame.PacketKind, r)
		}
	}()
	c.handler.HandleFrame(frame)
}

// Send frame-encodes pkt on the caller's goroutine and enqueues the result
// for this connection's own write path.
func (c *Conn) Send(pkt wire.Packet) error {
	frame, err := wire.Build(pkt)
	if err != nil {
		return err
	}
	c.enqueue(frame)
	return nil
}

func (c *Conn) enqueue(frame []byte) {
	c.mu.Lock()
	c.queue = append(c.queue, frame)
	c.queuedBytes.Add(int64(len(frame)))
	shouldStart := !c.draining
	if shouldStart {
		c.draining = true
	}
	c.mu.Unlock()

	if shouldStart {
		go c.drainWriteQueue()
	}
}

// drainWriteQueue writes the queue's head-to-tail in enqueue order, so
// bytes from different Send calls never interleave on the wire. draining
// is held true under c.mu for this goroutine's entire lifetime, from the
// enqueue that spawned it until the loop observes an empty queue and
// clears it in the same critical section - that atomicity is what stops a
// concurrent enqueue from spawning a second drainer while this one is
// still about to consume the frame it just saw.
func (c *Conn) drainWriteQueue() {
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			c.draining = false
			c.mu.Unlock()
			return
		}
		frame := c.queue[0]
		c.mu.Unlock()

		if _, err := c.nc.Write(frame); err != nil {
			log.Printf("[%s]: write error: %v", c.label, err)
			c.Close()
			return
		}

		c.mu.Lock()
		c.queue = c.queue[1:]
		c.mu.Unlock()
		c.queuedBytes.Add(-int64(len(frame)))
	}
}

// IsCongested reports whether the outgoing queue has grown past this
// connection's congestion threshold. Safe to call from any goroutine,
// including a sender driver polling on a different thread than this
// connection's own.
func (c *Conn) IsCongested() bool {
	return c.queuedBytes.Load() > c.congestionThreshold
}

// Close tears the connection down exactly once: the socket is closed and
// the handler's Close is invoked unconditionally.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.nc.Close()
		if herr := c.handler.Close(); herr != nil {
			log.Printf("[%s]: handler close error: %v", c.label, herr)
		}
	})
	return err
}

func (c *Conn) shutdown() {
	c.Close()
}

// Done returns a channel closed once this connection has shut down.
func (c *Conn) Done() <-chan struct{} {
	return c.closed
}
