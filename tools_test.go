package pdu4go

import (
	"bytes"
	"testing"
)

func TestReadOffset(t *testing.T) {
	offset := 0

	buffer := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}

	NByte(buffer, &offset)

	if offset != 1 {
		t.Fatal("NByte error")
	}

	N2HShort(buffer, &offset)

	if offset != 3 {
		t.Fatal("N2HShort error")
	}

	N2HLong(buffer, &offset)

	if offset != 7 {
		t.Fatal("N2HLong error")
	}

	N2HLongLong(buffer, &offset)

	if offset != 15 {
		t.Fatal("N2HLongLong error")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	buffer := make([]byte, 15)
	offset := 0

	PutByte(buffer, &offset, 0xab)
	H2NShort(buffer, &offset, 0x1234)
	H2NLong(buffer, &offset, 0xdeadbeef)
	H2NLongLong(buffer, &offset, 0x1122334455667788)

	if offset != 15 {
		t.Fatal("write offset error")
	}

	offset = 0

	if NByte(buffer, &offset) != 0xab {
		t.Fatal("byte mismatch")
	}

	if N2HShort(buffer, &offset) != 0x1234 {
		t.Fatal("short mismatch")
	}

	if N2HLong(buffer, &offset) != 0xdeadbeef {
		t.Fatal("long mismatch")
	}

	if N2HLongLong(buffer, &offset) != 0x1122334455667788 {
		t.Fatal("long long mismatch")
	}
}

func TestReadBytes(t *testing.T) {
	buffer := []byte{1, 2, 3, 4}
	dst := make([]byte, 4)
	offset := 0

	if err := ReadBytes(dst, buffer, &offset); err != nil {
		t.Fatal(err)
	}

	if offset != 4 || !bytes.Equal(dst, buffer) {
		t.Fatal("ReadBytes error")
	}

	if err := ReadBytes(make([]byte, 8), buffer, nil); err == nil {
		t.Fatal("expect insufficient data")
	}
}
