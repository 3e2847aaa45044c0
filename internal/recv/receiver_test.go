package recv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftpipe-project/ftpipe/internal/wire"
)

func newTestReceiver(t *testing.T) (*Receiver, *Writer, *[]wire.Packet) {
	t.Helper()
	base := t.TempDir()
	writer, err := NewWriter(base)
	require.NoError(t, err)

	var acks []wire.Packet
	r := NewReceiver("test", writer, func(pkt wire.Packet) {
		acks = append(acks, pkt)
	})
	return r, writer, &acks
}

func TestSingleSmallFile(t *testing.T) {
	r, w, acks := newTestReceiver(t)

	r.HandleFrame(frameOf(t, wire.FileInfo{FileSize: 5, Name: "small.txt"}))
	r.HandleFrame(frameOf(t, wire.FileChunk{Offset: 0, Data: []byte("Hello")}))
	r.HandleFrame(frameOf(t, wire.FileDone{FileSize: 5}))

	require.Len(t, *acks, 1)
	assert.Equal(t, wire.Ack{Offset: 5}, (*acks)[0])
	assert.Equal(t, StateIdle, r.State())

	content, err := os.ReadFile(filepath.Join(w.baseDir, "small.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(content))
}

func TestTwoChunkFile(t *testing.T) {
	r, w, acks := newTestReceiver(t)

	r.HandleFrame(frameOf(t, wire.FileInfo{FileSize: 10, Name: "chunked.bin"}))
	r.HandleFrame(frameOf(t, wire.FileChunk{Offset: 0, Data: []byte{1, 2, 3, 4, 5}}))
	r.HandleFrame(frameOf(t, wire.FileChunk{Offset: 5, Data: []byte{6, 7, 8, 9, 10}}))
	r.HandleFrame(frameOf(t, wire.FileDone{FileSize: 10}))

	require.Len(t, *acks, 1)
	assert.Equal(t, wire.Ack{Offset: 10}, (*acks)[0])

	content, err := os.ReadFile(filepath.Join(w.baseDir, "chunked.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, content)
}

func TestNestedPathCreation(t *testing.T) {
	r, w, acks := newTestReceiver(t)

	r.HandleFrame(frameOf(t, wire.FileInfo{FileSize: 1, Name: "subdir/nested/file.txt"}))
	r.HandleFrame(frameOf(t, wire.FileChunk{Offset: 0, Data: []byte("x")}))
	r.HandleFrame(frameOf(t, wire.FileDone{FileSize: 1}))

	require.Len(t, *acks, 1)
	_, err := os.Stat(filepath.Join(w.baseDir, "subdir", "nested"))
	assert.NoError(t, err)
}

func TestPathTraversalBlocked(t *testing.T) {
	r, w, acks := newTestReceiver(t)

	r.HandleFrame(frameOf(t, wire.FileInfo{FileSize: 100, Name: "../../../etc/passwd"}))
	r.HandleFrame(frameOf(t, wire.FileChunk{Offset: 0, Data: make([]byte, 100)}))
	r.HandleFrame(frameOf(t, wire.FileDone{FileSize: 100}))

	require.Len(t, *acks, 1, "rejected transfer must produce an ErrorMsg, not an Ack")
	errMsg, ok := (*acks)[0].(wire.ErrorMsg)
	require.True(t, ok, "expected an ErrorMsg packet, got %T", (*acks)[0])
	assert.EqualValues(t, ErrCodePathTraversal, errMsg.Code)

	_, err := os.Stat(filepath.Join(filepath.Dir(w.baseDir), "etc", "passwd"))
	assert.True(t, os.IsNotExist(err), "no file should be created outside the base directory")
}

func TestSizeMismatchProducesNoAck(t *testing.T) {
	r, _, acks := newTestReceiver(t)

	r.HandleFrame(frameOf(t, wire.FileInfo{FileSize: 100, Name: "mismatch.txt"}))
	r.HandleFrame(frameOf(t, wire.FileChunk{Offset: 0, Data: []byte{1, 2, 3}}))
	r.HandleFrame(frameOf(t, wire.FileDone{FileSize: 100}))

	assert.Empty(t, *acks)
	assert.Equal(t, StateIdle, r.State())
}

func TestEmptyFileProducesAckAtZero(t *testing.T) {
	r, w, acks := newTestReceiver(t)

	r.HandleFrame(frameOf(t, wire.FileInfo{FileSize: 0, Name: "empty.txt"}))
	r.HandleFrame(frameOf(t, wire.FileDone{FileSize: 0}))

	require.Len(t, *acks, 1)
	assert.Equal(t, wire.Ack{Offset: 0}, (*acks)[0])

	info, err := os.Stat(filepath.Join(w.baseDir, "empty.txt"))
	require.NoError(t, err)
	assert.EqualValues(t, 0, info.Size())
}

func TestRejectedStateClearsOnNextFileInfo(t *testing.T) {
	r, _, acks := newTestReceiver(t)

	r.HandleFrame(frameOf(t, wire.FileInfo{FileSize: 1, Name: "../escape.txt"}))
	assert.Equal(t, StateRejected, r.State())

	r.HandleFrame(frameOf(t, wire.FileInfo{FileSize: 1, Name: "ok.txt"}))
	assert.Equal(t, StateReceiving, r.State())

	r.HandleFrame(frameOf(t, wire.FileChunk{Offset: 0, Data: []byte("x")}))
	r.HandleFrame(frameOf(t, wire.FileDone{FileSize: 1}))
	require.Len(t, *acks, 2, "one ErrorMsg for the rejected file, one Ack for the accepted one")
	assert.Equal(t, wire.Ack{Offset: 1}, (*acks)[1])
}

func TestChunksIgnoredWhileRejected(t *testing.T) {
	r, w, acks := newTestReceiver(t)

	r.HandleFrame(frameOf(t, wire.FileInfo{FileSize: 1, Name: "../escape.txt"}))
	r.HandleFrame(frameOf(t, wire.FileChunk{Offset: 0, Data: []byte("x")}))
	r.HandleFrame(frameOf(t, wire.FileDone{FileSize: 1}))

	require.Len(t, *acks, 1, "only the rejection's ErrorMsg, no Ack for the ignored chunk")
	assert.False(t, w.IsOpen())
}

func TestHandshakeAndAckDoNotChangeState(t *testing.T) {
	r, _, acks := newTestReceiver(t)

	r.HandleFrame(frameOf(t, wire.Handshake{Version: wire.ProtocolVersion}))
	assert.Equal(t, StateIdle, r.State())

	r.HandleFrame(frameOf(t, wire.Ack{Offset: 5}))
	assert.Equal(t, StateIdle, r.State())
	assert.Empty(t, *acks)
}

func TestUnknownKindIsIgnored(t *testing.T) {
	r, _, _ := newTestReceiver(t)
	assert.NotPanics(t, func() {
		r.HandleFrame(wire.Frame{PacketKind: wire.Kind(99), Payload: nil})
	})
	assert.Equal(t, StateIdle, r.State())
}

func TestCloseClosesWriter(t *testing.T) {
	r, w, _ := newTestReceiver(t)
	require.NoError(t, w.BeginFile("open.txt", 1))
	require.NoError(t, r.Close())
	assert.False(t, w.IsOpen())
}

func frameOf(t *testing.T, pkt wire.Packet) wire.Frame {
	t.Helper()
	frame, err := wire.Build(pkt)
	require.NoError(t, err)
	parsed, ok := wire.TryParse(frame)
	require.True(t, ok)
	return parsed
}
