package pdu4go

import (
	"fmt"

	origin_errors "errors"
)

// ProtoTag identifies the wire protocol of a PDU layer. Values below
// 0xfe share the IP protocol number space, so a payload tag can be
// written directly into an IPv4 protocol field.
type ProtoTag uint8

const (
	TagIP    ProtoTag = 0x00
	TagICMP  ProtoTag = 0x01
	TagIPIP  ProtoTag = 0x04
	TagTCP   ProtoTag = 0x06
	TagUDP   ProtoTag = 0x11
	TagRaw   ProtoTag = 0xfe
	TagEAPOL ProtoTag = 0xff
)

func (tag ProtoTag) String() string {
	switch tag {
	case TagIP:
		return "ip"
	case TagICMP:
		return "icmp"
	case TagIPIP:
		return "ipip"
	case TagTCP:
		return "tcp"
	case TagUDP:
		return "udp"
	case TagRaw:
		return "raw"
	case TagEAPOL:
		return "eapol"
	default:
		return fmt.Sprintf("proto(%d)", uint8(tag))
	}
}

var (
	// ErrBufferTooShort a fixed or declared header size exceeds the
	// available bytes at some parse step
	ErrBufferTooShort = origin_errors.New("insufficent data length")
	// ErrMalformedLength a length derived field implies a size below
	// the fixed header minimum
	ErrMalformedLength = origin_errors.New("malformed length field")
)

// PDU is one encapsulation layer of a packet. A unit owns at most one
// inner unit representing the next layer's payload.
//
// Length and checksum fields that depend on the payload are finalized
// bottom-up during serialization, never cached at construction time.
type PDU interface {
	// Tag identifies the wire protocol of this layer.
	Tag() ProtoTag
	// HeaderSize is the serialized size of this layer's own header,
	// options and padding included, inner unit excluded.
	HeaderSize() int
	// TotalSize is HeaderSize plus the inner unit's TotalSize.
	TotalSize() int
	// InnerPDU returns the owned payload unit, nil when absent.
	InnerPDU() PDU
	// SetInnerPDU replaces the current inner unit with inner.
	SetInnerPDU(inner PDU)
	// DetachInnerPDU releases and returns the current inner unit.
	DetachInnerPDU() PDU
	// WriteSerialization writes this layer's header into the head of
	// buffer. The inner unit has already been written into the tail
	// by SerializeTo, so size and checksum fields can be finalized
	// here. Buffer must hold at least TotalSize() bytes.
	WriteSerialization(buffer []byte, parent PDU)
	// MatchesResponse reports whether peer holds a reply correlated
	// with this unit. Too short a peer buffer never matches.
	MatchesResponse(peer []byte) bool
	// CloneFromBytes parses a fully independent copy of this layer
	// kind from buffer, recursively cloning the payload.
	CloneFromBytes(buffer []byte) (PDU, error)
}

// basePDU carries the protocol tag and the exclusively owned inner
// unit shared by all concrete layers.
type basePDU struct {
	tag   ProtoTag
	inner PDU
}

func (pdu *basePDU) Tag() ProtoTag { return pdu.tag }

func (pdu *basePDU) InnerPDU() PDU { return pdu.inner }

func (pdu *basePDU) SetInnerPDU(inner PDU) { pdu.inner = inner }

func (pdu *basePDU) DetachInnerPDU() PDU {
	inner := pdu.inner
	pdu.inner = nil

	return inner
}

func totalSize(pdu PDU) int {
	size := pdu.HeaderSize()

	if inner := pdu.InnerPDU(); inner != nil {
		size += inner.TotalSize()
	}

	return size
}

// SerializeTo writes pdu and its payload chain into buffer. The inner
// unit is serialized first, into the tail of the buffer, so that the
// outer header write sees the payload's committed size. Insufficient
// capacity is a caller bug rather than a data error and panics.
func SerializeTo(pdu PDU, buffer []byte, parent PDU) {
	size := pdu.TotalSize()
	if len(buffer) < size {
		panic(fmt.Sprintf(
			"serialize: buffer capacity %d < total size %d",
			len(buffer), size,
		))
	}

	if inner := pdu.InnerPDU(); inner != nil {
		SerializeTo(inner, buffer[pdu.HeaderSize():size], pdu)
	}

	pdu.WriteSerialization(buffer[:size], parent)
}

// Serialize allocates a wire buffer for the whole chain and fills it
// with a nil parent context.
func Serialize(pdu PDU) []byte {
	buffer := make([]byte, pdu.TotalSize())
	SerializeTo(pdu, buffer, nil)

	return buffer
}
