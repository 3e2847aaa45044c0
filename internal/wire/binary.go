// Package wire implements the length-prefixed, big-endian binary protocol
// used to carry file-transfer packets over a reliable byte stream.
package wire

import "encoding/binary"

// ReadUint16 reads a big-endian u16 from the front of buf. The caller must
// ensure len(buf) >= 2.
func ReadUint16(buf []byte) uint16 {
	return binary.BigEndian.Uint16(buf)
}

// ReadUint32 reads a big-endian u32 from the front of buf. The caller must
// ensure len(buf) >= 4.
func ReadUint32(buf []byte) uint32 {
	return binary.BigEndian.Uint32(buf)
}

// ReadUint64 reads a big-endian u64 from the front of buf. The caller must
// ensure len(buf) >= 8.
func ReadUint64(buf []byte) uint64 {
	return binary.BigEndian.Uint64(buf)
}

// PutUint16 writes v into the first 2 bytes of dst.
func PutUint16(dst []byte, v uint16) {
	binary.BigEndian.PutUint16(dst, v)
}

// PutUint32 writes v into the first 4 bytes of dst.
func PutUint32(dst []byte, v uint32) {
	binary.BigEndian.PutUint32(dst, v)
}

// PutUint64 writes v into the first 8 bytes of dst.
func PutUint64(dst []byte, v uint64) {
	binary.BigEndian.PutUint64(dst, v)
}

// AppendUint16 appends v to buf in big-endian order and returns the result.
func AppendUint16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

// AppendUint32 appends v to buf in big-endian order and returns the result.
func AppendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// AppendUint64 appends v to buf in big-endian order and returns the result.
func AppendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}
