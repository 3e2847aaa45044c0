// Package recv implements the receive-side half of the protocol: the
// stateful file writer and the per-connection transfer state machine that
// drives it.
package recv

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ftpipe-project/ftpipe/internal/pathsafe"
)

// Writer errors.
var (
	ErrPathTraversal   = errors.New("recv: target path escapes base directory")
	ErrCreateDirFailed = errors.New("recv: could not create parent directories")
	ErrOpenFailed      = errors.New("recv: could not open target file")
	ErrNotOpen         = errors.New("recv: no file is currently open")
)

// Writer is a stateful, single-file sink bound to one base directory. It is
// not safe for concurrent use - it is owned exclusively by the receiver's
// executor.
type Writer struct {
	baseDir string

	file         *os.File
	targetPath   string
	expectedSize uint64
	bytesWritten uint64
	open         bool
}

// NewWriter creates a writer rooted at baseDir, creating baseDir itself if
// it does not yet exist.
func NewWriter(baseDir string) (*Writer, error) {
	canonical, err := pathsafe.CanonicalBase(baseDir)
	if err != nil {
		return nil, fmt.Errorf("recv: resolve base directory: %w", err)
	}
	if err := os.MkdirAll(canonical, 0o755); err != nil {
		return nil, fmt.Errorf("recv: create base directory: %w", err)
	}
	return &Writer{baseDir: canonical}, nil
}

// BeginFile closes any file currently open, then opens relativePath (a
// forward-slash path as received on the wire) for truncating write,
// creating any missing parent directories.
func (w *Writer) BeginFile(relativePath string, expectedSize uint64) error {
	w.Close()

	target, ok := pathsafe.Resolve(w.baseDir, relativePath)
	if !ok {
		return ErrPathTraversal
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrCreateDirFailed, err)
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	w.file = f
	w.targetPath = target
	w.expectedSize = expectedSize
	w.bytesWritten = 0
	w.open = true
	return nil
}

// WriteChunk writes data at offset. Chunks may arrive out of order; offset
// always seeks absolutely, and bytesWritten is a running sum of bytes
// written rather than a high-water mark.
func (w *Writer) WriteChunk(offset uint64, data []byte) error {
	if !w.open {
		return ErrNotOpen
	}
	if _, err := w.file.Seek(int64(offset), io.SeekStart); err != nil {
		return fmt.Errorf("recv: seek: %w", err)
	}
	n, err := w.file.Write(data)
	w.bytesWritten += uint64(n)
	if err != nil {
		return fmt.Errorf("recv: write: %w", err)
	}
	return nil
}

// FinishFile reports whether bytesWritten matches finalSize, then closes
// the file regardless of the outcome.
func (w *Writer) FinishFile(finalSize uint64) bool {
	ok := w.bytesWritten == finalSize
	w.Close()
	return ok
}

// Close is idempotent and releases the underlying file handle.
func (w *Writer) Close() error {
	if !w.open {
		return nil
	}
	w.open = false
	err := w.file.Close()
	w.file = nil
	return err
}

// BytesWritten returns the running byte count since the last BeginFile.
func (w *Writer) BytesWritten() uint64 {
	return w.bytesWritten
}

// IsOpen reports whether a file is currently open for writing.
func (w *Writer) IsOpen() bool {
	return w.open
}

// TargetPath returns the resolved path of the currently (or most recently)
// open file.
func (w *Writer) TargetPath() string {
	return w.targetPath
}
