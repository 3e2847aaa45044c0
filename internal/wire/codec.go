package wire

import "fmt"

// AppendPayload serializes pkt's payload (not the frame header) onto buf and
// returns the result. It fails without appending anything if pkt violates a
// protocol bound - callers must not retain buf on error.
func AppendPayload(buf []byte, pkt Packet) ([]byte, error) {
	switch p := pkt.(type) {
	case Handshake:
		buf = AppendUint16(buf, p.Version)
		buf = AppendUint32(buf, p.Capabilities)
		return buf, nil

	case Ack:
		return AppendUint64(buf, p.Offset), nil

	case ErrorMsg:
		if len(p.Message) > MaxErrorMessageLen {
			return nil, fmt.Errorf("wire: encode Error: %w", ErrTooLong)
		}
		buf = AppendUint16(buf, p.Code)
		buf = AppendUint32(buf, uint32(len(p.Message)))
		buf = append(buf, p.Message...)
		return buf, nil

	case FileInfo:
		if len(p.Name) == 0 {
			return nil, fmt.Errorf("wire: encode FileInfo: %w", ErrEmptyName)
		}
		if len(p.Name) > MaxFileNameLen {
			return nil, fmt.Errorf("wire: encode FileInfo: %w", ErrTooLong)
		}
		buf = AppendUint64(buf, p.FileSize)
		buf = AppendUint32(buf, uint32(len(p.Name)))
		buf = append(buf, p.Name...)
		return buf, nil

	case FileChunk:
		if len(p.Data) > MaxFileChunkData {
			return nil, fmt.Errorf("wire: encode FileChunk: %w", ErrTooLong)
		}
		buf = AppendUint64(buf, p.Offset)
		buf = AppendUint32(buf, uint32(len(p.Data)))
		buf = append(buf, p.Data...)
		return buf, nil

	case FileDone:
		return AppendUint64(buf, p.FileSize), nil

	default:
		return nil, fmt.Errorf("wire: encode: %w: %T", ErrUnknownKind, pkt)
	}
}

// Decode parses a message of the given kind from payload, which must be
// exactly the frame's declared payload bytes (trailing bytes beyond a
// kind's declared field lengths are ignored, never read). It returns a
// Packet holding one of the concrete message structs.
func Decode(kind Kind, payload []byte) (Packet, error) {
	switch kind {
	case KindHandshake:
		return decodeHandshake(payload)
	case KindAck:
		return decodeAck(payload)
	case KindError:
		return decodeError(payload)
	case KindFileInfo:
		return decodeFileInfo(payload)
	case KindFileChunk:
		return decodeFileChunk(payload)
	case KindFileDone:
		return decodeFileDone(payload)
	default:
		return nil, fmt.Errorf("wire: decode: %w: %d", ErrUnknownKind, kind)
	}
}

func decodeHandshake(payload []byte) (Packet, error) {
	if len(payload) < 6 {
		return nil, fmt.Errorf("wire: decode Handshake: %w", ErrTooSmall)
	}
	return Handshake{
		Version:      ReadUint16(payload[0:2]),
		Capabilities: ReadUint32(payload[2:6]),
	}, nil
}

func decodeAck(payload []byte) (Packet, error) {
	if len(payload) < 8 {
		return nil, fmt.Errorf("wire: decode Ack: %w", ErrTooSmall)
	}
	return Ack{Offset: ReadUint64(payload[0:8])}, nil
}

func decodeError(payload []byte) (Packet, error) {
	if len(payload) < 6 {
		return nil, fmt.Errorf("wire: decode Error: %w", ErrTooSmall)
	}
	code := ReadUint16(payload[0:2])
	msgLen := ReadUint32(payload[2:6])
	if msgLen > MaxErrorMessageLen {
		return nil, fmt.Errorf("wire: decode Error: %w", ErrTooLong)
	}
	rest := payload[6:]
	if uint64(msgLen) > uint64(len(rest)) {
		return nil, fmt.Errorf("wire: decode Error: %w", ErrTruncated)
	}
	return ErrorMsg{
		Code:    code,
		Message: string(rest[:msgLen]),
	}, nil
}

func decodeFileInfo(payload []byte) (Packet, error) {
	if len(payload) < 12 {
		return nil, fmt.Errorf("wire: decode FileInfo: %w", ErrTooSmall)
	}
	size := ReadUint64(payload[0:8])
	nameLen := ReadUint32(payload[8:12])
	if nameLen == 0 {
		return nil, fmt.Errorf("wire: decode FileInfo: %w", ErrEmptyName)
	}
	if nameLen > MaxFileNameLen {
		return nil, fmt.Errorf("wire: decode FileInfo: %w", ErrTooLong)
	}
	rest := payload[12:]
	if uint64(nameLen) > uint64(len(rest)) {
		return nil, fmt.Errorf("wire: decode FileInfo: %w", ErrTruncated)
	}
	return FileInfo{
		FileSize: size,
		Name:     string(rest[:nameLen]),
	}, nil
}

func decodeFileChunk(payload []byte) (Packet, error) {
	if len(payload) < 12 {
		return nil, fmt.Errorf("wire: decode FileChunk: %w", ErrTooSmall)
	}
	offset := ReadUint64(payload[0:8])
	dataLen := ReadUint32(payload[8:12])
	if dataLen > MaxFileChunkData {
		return nil, fmt.Errorf("wire: decode FileChunk: %w", ErrTooLong)
	}
	rest := payload[12:]
	if uint64(dataLen) > uint64(len(rest)) {
		return nil, fmt.Errorf("wire: decode FileChunk: %w", ErrTruncated)
	}
	return FileChunk{
		Offset: offset,
		Data:   rest[:dataLen],
	}, nil
}

func decodeFileDone(payload []byte) (Packet, error) {
	if len(payload) < 8 {
		return nil, fmt.Errorf("wire: decode FileDone: %w", ErrTooSmall)
	}
	return FileDone{FileSize: ReadUint64(payload[0:8])}, nil
}
