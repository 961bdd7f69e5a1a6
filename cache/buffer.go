package cache

import (
	"encoding/binary"
)

// Buffer is a read cursor over a borrowed byte slice. It never copies
// or grows; Unread rewinds the cursor for re-parsing.
type Buffer struct {
	data   []byte
	offset int
}

func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Offset bytes consumed so far
func (buff *Buffer) Offset() int { return buff.offset }

// Cap total size of the underlying slice
func (buff *Buffer) Cap() int { return len(buff.data) }

// Len remaining unread bytes
func (buff *Buffer) Len() int { return len(buff.data) - buff.offset }

// Bytes remaining unread view of the underlying slice
func (buff *Buffer) Bytes() []byte { return buff.data[buff.offset:] }

// Unread rewinds the cursor by at most size bytes.
func (buff *Buffer) Unread(size int) {
	if size > buff.offset {
		size = buff.offset
	}

	buff.offset -= size
}

// Skip advances the cursor by at most size bytes.
func (buff *Buffer) Skip(size int) {
	if size > buff.Len() {
		size = buff.Len()
	}

	buff.offset += size
}

func (buff *Buffer) ReadByte() byte {
	result := buff.data[buff.offset]
	buff.offset++

	return result
}

// ReadHShort little endian 16 bit read
func (buff *Buffer) ReadHShort() uint16 {
	result := binary.LittleEndian.Uint16(buff.data[buff.offset:])
	buff.offset += 2

	return result
}

// ReadNShort network order 16 bit read
func (buff *Buffer) ReadNShort() uint16 {
	result := binary.BigEndian.Uint16(buff.data[buff.offset:])
	buff.offset += 2

	return result
}

// ReadNLong network order 32 bit read
func (buff *Buffer) ReadNLong() uint32 {
	result := binary.BigEndian.Uint32(buff.data[buff.offset:])
	buff.offset += 4

	return result
}

// ReadBytes copies len(dst) bytes out of the buffer, returning the
// copied count.
func (buff *Buffer) ReadBytes(dst []byte) int {
	size := copy(dst, buff.data[buff.offset:])
	buff.offset += size

	return size
}
