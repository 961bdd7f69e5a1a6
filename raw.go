package pdu4go

import (
	"bytes"
)

// RawPDU holds an opaque payload for protocols without a registered
// interpreter. The unit remembers the protocol tag it was parsed
// under so a reserialized packet keeps its original protocol field.
type RawPDU struct {
	basePDU

	payload []byte
}

// NewRawPDU copies payload into a fresh raw unit.
func NewRawPDU(payload []byte) *RawPDU {
	return NewRawPDUWithTag(TagRaw, payload)
}

// NewRawPDUWithTag copies payload into a raw unit tagged as tag.
func NewRawPDUWithTag(tag ProtoTag, payload []byte) *RawPDU {
	raw := &RawPDU{basePDU: basePDU{tag: tag}}
	raw.payload = append(raw.payload, payload...)

	return raw
}

// Payload raw bytes owned by this unit
func (raw *RawPDU) Payload() []byte { return raw.payload }

func (raw *RawPDU) HeaderSize() int { return len(raw.payload) }

func (raw *RawPDU) TotalSize() int { return totalSize(raw) }

func (raw *RawPDU) WriteSerialization(buffer []byte, _ PDU) {
	copy(buffer, raw.payload)
}

// MatchesResponse payload prefix equality against the peer bytes
func (raw *RawPDU) MatchesResponse(peer []byte) bool {
	if len(peer) < len(raw.payload) {
		return false
	}

	return bytes.Equal(raw.payload, peer[:len(raw.payload)])
}

func (raw *RawPDU) CloneFromBytes(buffer []byte) (PDU, error) {
	return NewRawPDUWithTag(raw.tag, buffer), nil
}
