package wire

import "testing"

func TestUint16RoundTrip(t *testing.T) {
	values := []uint16{0, 1, 0xDEAD, 0xFFFF}
	for _, v := range values {
		var tmp [2]byte
		PutUint16(tmp[:], v)
		if got := ReadUint16(tmp[:]); got != v {
			t.Errorf("u16 round trip: got %d want %d", got, v)
		}
	}
}

func TestUint32RoundTrip(t *testing.T) {
	values := []uint32{0, 1, 0xDEADBEEF, 0xFFFFFFFF}
	for _, v := range values {
		var tmp [4]byte
		PutUint32(tmp[:], v)
		if got := ReadUint32(tmp[:]); got != v {
			t.Errorf("u32 round trip: got %d want %d", got, v)
		}
	}
}

func TestUint64RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0xDEADBEEFCAFEBABE, 0xFFFFFFFFFFFFFFFF}
	for _, v := range values {
		var tmp [8]byte
		PutUint64(tmp[:], v)
		if got := ReadUint64(tmp[:]); got != v {
			t.Errorf("u64 round trip: got %d want %d", got, v)
		}
	}
}

func TestAppendUint16(t *testing.T) {
	buf := AppendUint16(nil, 0x0102)
	if len(buf) != 2 || buf[0] != 0x01 || buf[1] != 0x02 {
		t.Errorf("AppendUint16 produced %v, want [1 2]", buf)
	}
}

func TestAppendUint32(t *testing.T) {
	buf := AppendUint32([]byte{0xAA}, 0x01020304)
	want := []byte{0xAA, 0x01, 0x02, 0x03, 0x04}
	if string(buf) != string(want) {
		t.Errorf("AppendUint32 produced %v, want %v", buf, want)
	}
}

func TestAppendUint64(t *testing.T) {
	buf := AppendUint64(nil, 0x0102030405060708)
	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	if string(buf) != string(want) {
		t.Errorf("AppendUint64 produced %v, want %v", buf, want)
	}
}
