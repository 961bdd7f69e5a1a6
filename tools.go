package pdu4go

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

func NByte(buffer []byte, offset *int) uint8 {
	idx := 0

	if offset != nil {
		idx = *offset
		(*offset)++
	}

	result := buffer[idx]

	return result
}

func N2HShort(buffer []byte, offset *int) uint16 {
	idx := 0

	if offset != nil {
		idx = *offset
		(*offset) += 2
	}

	result := binary.BigEndian.Uint16(buffer[idx:])

	return result
}

func N2HLong(buffer []byte, offset *int) uint32 {
	idx := 0

	if offset != nil {
		idx = *offset
		(*offset) += 4
	}

	result := binary.BigEndian.Uint32(buffer[idx:])

	return result
}

func N2HLongLong(buffer []byte, offset *int) uint64 {
	idx := 0

	if offset != nil {
		idx = *offset
		(*offset) += 8
	}

	result := binary.BigEndian.Uint64(buffer[idx:])

	return result
}

func ReadBytes(dst []byte, buffer []byte, offset *int) error {
	idx := 0

	if offset != nil {
		idx = *offset
	}
	buffer = buffer[idx:]

	if len(buffer) < len(dst) {
		return errors.New("insufficient data length")
	}

	if copyLen := copy(dst, buffer); offset != nil {
		*offset += copyLen
	}

	return nil
}

func PutByte(buffer []byte, offset *int, value uint8) {
	idx := 0

	if offset != nil {
		idx = *offset
		(*offset)++
	}

	buffer[idx] = value
}

func H2NShort(buffer []byte, offset *int, value uint16) {
	idx := 0

	if offset != nil {
		idx = *offset
		(*offset) += 2
	}

	binary.BigEndian.PutUint16(buffer[idx:], value)
}

func H2NLong(buffer []byte, offset *int, value uint32) {
	idx := 0

	if offset != nil {
		idx = *offset
		(*offset) += 4
	}

	binary.BigEndian.PutUint32(buffer[idx:], value)
}

func H2NLongLong(buffer []byte, offset *int, value uint64) {
	idx := 0

	if offset != nil {
		idx = *offset
		(*offset) += 8
	}

	binary.BigEndian.PutUint64(buffer[idx:], value)
}
