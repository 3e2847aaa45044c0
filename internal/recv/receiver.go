package recv

import (
	"errors"
	"log"

	"github.com/ftpipe-project/ftpipe/internal/wire"
)

// ErrIntegrityFailure is recorded (never returned to a caller that aborts
// on it - the receiver only logs it) when bytesWritten at FileDone does
// not match the declared final size.
var ErrIntegrityFailure = errors.New("recv: bytes written does not match declared file size")

// State is the receiver's per-connection, single-file-at-a-time state.
type State int

const (
	StateIdle State = iota
	StateReceiving
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateReceiving:
		return "Receiving"
	case StateRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// AckFunc is invoked by the receiver to emit a packet back to the sender -
// an Ack on success, or an ErrorMsg packet on rejection. It must not block
// the receiver's executor.
type AckFunc func(pkt wire.Packet)

// ErrorCode identifies the kind of rejection carried by an outgoing
// wire.ErrorMsg.Code, independent of wire.Kind's own numbering.
type ErrorCode uint16

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodePathTraversal
	ErrCodeCreateDirFailed
	ErrCodeOpenFailed
)

// errorCodeFor maps a BeginFile failure to the taxonomy entry it came from.
func errorCodeFor(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrPathTraversal):
		return ErrCodePathTraversal
	case errors.Is(err, ErrCreateDirFailed):
		return ErrCodeCreateDirFailed
	case errors.Is(err, ErrOpenFailed):
		return ErrCodeOpenFailed
	default:
		return ErrCodeUnknown
	}
}

// Receiver dispatches parsed frames to writer calls and tracks the
// acceptance state of the file currently (or most recently) in flight. It
// never panics out of HandleFrame; the connection engine's guard exists
// only to contain programmer error, not expected protocol violations.
type Receiver struct {
	label  string // remote address, for "[addr]: ..." log prefixes
	writer *Writer
	state  State
	onAck  AckFunc
}

// NewReceiver wires a receiver to the writer that will actually place bytes
// on disk. label is used purely for log messages.
func NewReceiver(label string, writer *Writer, onAck AckFunc) *Receiver {
	return &Receiver{
		label:  label,
		writer: writer,
		state:  StateIdle,
		onAck:  onAck,
	}
}

// State returns the receiver's current state, chiefly for tests.
func (r *Receiver) State() State {
	return r.state
}

// HandleFrame dispatches one parsed frame according to the receiver's
// current state. Decode failures and unknown kinds are logged, never
// escalated.
func (r *Receiver) HandleFrame(frame wire.Frame) {
	pkt, err := wire.Decode(frame.PacketKind, frame.Payload)
	if err != nil {
		log.Printf("[%s]: dropping malformed %s frame: %v", r.label, frame.PacketKind, err)
		return
	}

	switch p := pkt.(type) {
	case wire.Handshake:
		r.handleHandshake(p)
	case wire.Ack:
		log.Printf("[%s]: received Ack at offset %d", r.label, p.Offset)
	case wire.FileInfo:
		r.handleFileInfo(p)
	case wire.FileChunk:
		r.handleFileChunk(p)
	case wire.FileDone:
		r.handleFileDone(p)
	case wire.ErrorMsg:
		log.Printf("[%s]: peer reported error %d: %s", r.label, p.Code, p.Message)
	default:
		log.Printf("[%s]: ignoring unrecognized packet %T", r.label, p)
	}
}

func (r *Receiver) handleHandshake(h wire.Handshake) {
	if h.Version != wire.ProtocolVersion {
		log.Printf("[%s]: handshake version mismatch: got %d, expect %d", r.label, h.Version, wire.ProtocolVersion)
	}
}

func (r *Receiver) handleFileInfo(info wire.FileInfo) {
	if err := r.writer.BeginFile(info.Name, info.FileSize); err != nil {
		log.Printf("[%s]: rejecting file %q: %v", r.label, info.Name, err)
		r.state = StateRejected
		if r.onAck != nil {
			r.onAck(wire.ErrorMsg{Code: uint16(errorCodeFor(err)), Message: err.Error()})
		}
		return
	}
	log.Printf("[%s]: accepted file %q (%d bytes)", r.label, info.Name, info.FileSize)
	r.state = StateReceiving
}

func (r *Receiver) handleFileChunk(chunk wire.FileChunk) {
	if r.state == StateRejected {
		return
	}
	if err := r.writer.WriteChunk(chunk.Offset, chunk.Data); err != nil {
		log.Printf("[%s]: write error at offset %d: %v", r.label, chunk.Offset, err)
	}
}

func (r *Receiver) handleFileDone(done wire.FileDone) {
	defer func() { r.state = StateIdle }()

	if r.state == StateRejected {
		return
	}

	ok := r.writer.FinishFile(done.FileSize)
	if !ok {
		log.Printf("[%s]: %v: wrote %d bytes, declared %d", r.label, ErrIntegrityFailure, r.writer.BytesWritten(), done.FileSize)
		return
	}

	log.Printf("[%s]: file complete (%d bytes)", r.label, done.FileSize)
	if r.onAck != nil {
		r.onAck(wire.Ack{Offset: done.FileSize})
	}
}

// Close shuts the receiver down, unconditionally closing its writer.
func (r *Receiver) Close() error {
	return r.writer.Close()
}
