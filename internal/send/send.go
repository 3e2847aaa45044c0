// Package send implements the sender-side driver: given an opened
// connection and a local file, it emits the Handshake/FileInfo/FileChunk*/
// FileDone sequence, honoring the connection's congestion signal.
package send

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ftpipe-project/ftpipe/internal/wire"
)

// chunkSize is the amount of file data carried per FileChunk.
const chunkSize = 4096

// congestionPollInterval is how long the driver sleeps between congestion
// checks while the connection reports itself backed up.
const congestionPollInterval = time.Millisecond

// Sender is the connection-level capability the driver needs: encode and
// enqueue a packet, and report whether its outgoing queue is backed up.
// *conn.Conn satisfies this directly.
type Sender interface {
	Send(pkt wire.Packet) error
	IsCongested() bool
}

// File sends one local file over sender, announcing it under remoteName
// (converted to forward slashes regardless of the host OS).
func File(sender Sender, localPath, remoteName string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("send: open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("send: stat %s: %w", localPath, err)
	}
	size := uint64(info.Size())

	// filepath.ToSlash is a no-op on non-Windows hosts, but the walker may
	// still hand back names containing literal backslashes from a
	// Windows-authored directory tree, so normalize explicitly.
	wireName := strings.ReplaceAll(remoteName, `\`, "/")

	if err := sender.Send(wire.FileInfo{FileSize: size, Name: wireName}); err != nil {
		return fmt.Errorf("send: FileInfo: %w", err)
	}

	var offset uint64
	buf := make([]byte, chunkSize)
	for {
		for sender.IsCongested() {
			time.Sleep(congestionPollInterval)
		}

		n, err := f.Read(buf)
		if n > 0 {
			chunk := wire.FileChunk{Offset: offset, Data: append([]byte(nil), buf[:n]...)}
			if sendErr := sender.Send(chunk); sendErr != nil {
				return fmt.Errorf("send: FileChunk at offset %d: %w", offset, sendErr)
			}
			offset += uint64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("send: read %s: %w", localPath, err)
		}
	}

	if err := sender.Send(wire.FileDone{FileSize: size}); err != nil {
		return fmt.Errorf("send: FileDone: %w", err)
	}
	return nil
}

// Handshake emits the protocol handshake. Callers issue this once per
// connection, before the first File call.
func Handshake(sender Sender) error {
	return sender.Send(wire.Handshake{Version: wire.ProtocolVersion, Capabilities: 0})
}
