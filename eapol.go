package pdu4go

import (
	"github.com/pkg/errors"
)

// EAPOLType frame type discriminant of the authentication framing
// family
type EAPOLType uint8

const (
	EAPOLTypeRC4 EAPOLType = 1
	EAPOLTypeRSN EAPOLType = 2
	EAPOLTypeWPA EAPOLType = 254
)

// EAPOLHeaderSize base header: version, packet type, body length,
// frame type
const EAPOLHeaderSize = 5

const (
	// RC4BodySize fixed symmetric key descriptor body
	RC4BodySize = 44
	// RSNBodySize fixed RSN/WPA key descriptor body
	RSNBodySize = 95

	rsnElementID = 0x30
)

// EAPOL common header of the authentication framing family. Concrete
// frames embed it and provide their body layout.
type EAPOL struct {
	basePDU

	// Version protocol version
	Version uint8
	// PacketType packet type
	PacketType uint8
	// BodyLength computed from the body size at serialize time when
	// zero
	BodyLength uint16
	// FrameType selects the body variant
	FrameType EAPOLType
}

func newEAPOL(packetType uint8, frameType EAPOLType) EAPOL {
	return EAPOL{
		basePDU:    basePDU{tag: TagEAPOL},
		Version:    1,
		PacketType: packetType,
		FrameType:  frameType,
	}
}

func (eapol *EAPOL) parseHeader(buffer []byte) (int, error) {
	if len(buffer) < EAPOLHeaderSize {
		return 0, errors.Wrapf(
			ErrBufferTooShort,
			"eapol header needs %d bytes, got %d",
			EAPOLHeaderSize, len(buffer),
		)
	}

	offset := 0

	eapol.Version = NByte(buffer, &offset)
	eapol.PacketType = NByte(buffer, &offset)
	eapol.BodyLength = N2HShort(buffer, &offset)
	eapol.FrameType = EAPOLType(NByte(buffer, &offset))

	return offset, nil
}

// writeHeader emits the 5 byte base header. A zero body length is
// filled from headerSize minus the version, length and type field
// sizes first.
func (eapol *EAPOL) writeHeader(buffer []byte, headerSize int) int {
	if eapol.BodyLength == 0 {
		eapol.BodyLength = uint16(headerSize - 4)
	}

	offset := 0

	PutByte(buffer, &offset, eapol.Version)
	PutByte(buffer, &offset, eapol.PacketType)
	H2NShort(buffer, &offset, eapol.BodyLength)
	PutByte(buffer, &offset, uint8(eapol.FrameType))

	return offset
}

// EAPOLFromBytes dispatches on the frame type discriminant. Unknown
// discriminants yield a nil unit without an error; callers must
// check both.
func EAPOLFromBytes(buffer []byte) (PDU, error) {
	if len(buffer) < EAPOLHeaderSize {
		return nil, errors.Wrapf(
			ErrBufferTooShort,
			"eapol header needs %d bytes, got %d",
			EAPOLHeaderSize, len(buffer),
		)
	}

	switch EAPOLType(buffer[4]) {
	case EAPOLTypeRC4:
		return RC4EAPOLFromBytes(buffer)
	case EAPOLTypeRSN, EAPOLTypeWPA:
		return RSNEAPOLFromBytes(buffer)
	}

	return nil, nil
}

// RC4EAPOL symmetric key descriptor frame.
type RC4EAPOL struct {
	EAPOL

	// DescType descriptor type/version byte
	DescType uint8
	// KeyLength overwritten with the actual key size at serialize
	// time when key material is present
	KeyLength uint16
	// ReplayCounter monotonic replay counter
	ReplayCounter uint64
	// KeyIV initialization vector
	KeyIV [16]byte
	// KeySign key signature
	KeySign [16]byte

	keyFlag  uint8
	keyIndex uint8

	key []byte
}

// NewRC4EAPOL builds an empty key frame with packet type 3.
func NewRC4EAPOL() *RC4EAPOL {
	return &RC4EAPOL{EAPOL: newEAPOL(0x03, EAPOLTypeRC4)}
}

// RC4EAPOLFromBytes parses base header and body. Key material is
// copied out only when the remaining bytes match the declared key
// length.
func RC4EAPOLFromBytes(buffer []byte) (*RC4EAPOL, error) {
	frame := &RC4EAPOL{EAPOL: EAPOL{basePDU: basePDU{tag: TagEAPOL}}}

	offset, err := frame.parseHeader(buffer)
	if err != nil {
		return nil, err
	}

	body := buffer[offset:]
	if len(body) < RC4BodySize {
		return nil, errors.Wrapf(
			ErrBufferTooShort,
			"rc4 key descriptor needs %d bytes, got %d",
			RC4BodySize, len(body),
		)
	}

	offset = 0

	frame.DescType = NByte(body, &offset)
	frame.KeyLength = N2HShort(body, &offset)
	frame.ReplayCounter = N2HLongLong(body, &offset)
	offset += copy(frame.KeyIV[:], body[offset:])

	packed := NByte(body, &offset)
	frame.keyFlag = packed >> 7
	frame.keyIndex = packed & 0x7f

	offset += copy(frame.KeySign[:], body[offset:])

	if rest := body[offset:]; len(rest) > 0 && len(rest) == int(frame.KeyLength) {
		frame.key = append(frame.key, rest...)
	}

	return frame, nil
}

// KeyFlag single flag bit packed with the key index
func (frame *RC4EAPOL) KeyFlag() uint8 { return frame.keyFlag }

func (frame *RC4EAPOL) SetKeyFlag(flag uint8) {
	frame.keyFlag = flag & 0x01
}

// KeyIndex 7 bit key index
func (frame *RC4EAPOL) KeyIndex() uint8 { return frame.keyIndex }

func (frame *RC4EAPOL) SetKeyIndex(index uint8) {
	frame.keyIndex = index & 0x7f
}

// Key key material owned by this frame
func (frame *RC4EAPOL) Key() []byte { return frame.key }

// SetKey copies key into the frame.
func (frame *RC4EAPOL) SetKey(key []byte) {
	frame.key = append(frame.key[:0:0], key...)
}

func (frame *RC4EAPOL) HeaderSize() int {
	return EAPOLHeaderSize + RC4BodySize + len(frame.key)
}

func (frame *RC4EAPOL) TotalSize() int { return totalSize(frame) }

func (frame *RC4EAPOL) WriteSerialization(buffer []byte, _ PDU) {
	offset := frame.writeHeader(buffer, frame.HeaderSize())
	frame.writeBody(buffer[offset:])
}

func (frame *RC4EAPOL) writeBody(buffer []byte) {
	if len(frame.key) > 0 {
		frame.KeyLength = uint16(len(frame.key))
	}

	offset := 0

	PutByte(buffer, &offset, frame.DescType)
	H2NShort(buffer, &offset, frame.KeyLength)
	H2NLongLong(buffer, &offset, frame.ReplayCounter)
	offset += copy(buffer[offset:], frame.KeyIV[:])
	PutByte(buffer, &offset, frame.keyFlag<<7|frame.keyIndex)
	offset += copy(buffer[offset:], frame.KeySign[:])
	copy(buffer[offset:], frame.key)
}

func (frame *RC4EAPOL) MatchesResponse([]byte) bool { return false }

func (frame *RC4EAPOL) CloneFromBytes(buffer []byte) (PDU, error) {
	cloned, err := RC4EAPOLFromBytes(buffer)
	if err != nil {
		return nil, err
	}

	return cloned, nil
}

// RSNEAPOL robust security network / WPA key descriptor frame.
//
// The key data area holds either raw key bytes or a serialized RSN
// information element; the two representations are mutually
// exclusive, last write wins.
type RSNEAPOL struct {
	EAPOL

	// DescType descriptor type/version byte
	DescType uint8
	// KeyInfo key information bitfield
	KeyInfo uint16
	// KeyLength forced to 32 for raw keys and zeroed for element
	// data at serialize time
	KeyLength uint16
	// ReplayCounter monotonic replay counter
	ReplayCounter uint64
	// Nonce key nonce
	Nonce [32]byte
	// KeyIV EAPOL key initialization vector
	KeyIV [16]byte
	// RSC receive sequence counter
	RSC uint64
	// ID identifier
	ID uint64
	// MIC message integrity code
	MIC [16]byte
	// WPALength key data size on the wire, element framing included
	WPALength uint16

	key          []byte
	keyIsElement bool
}

// NewRSNEAPOL builds an empty key frame with packet type 3.
func NewRSNEAPOL() *RSNEAPOL {
	return &RSNEAPOL{EAPOL: newEAPOL(0x03, EAPOLTypeRSN)}
}

// RSNEAPOLFromBytes parses base header and body. Key data is copied
// out only when the remaining bytes match the declared WPA key data
// length; parsed key data always uses the raw representation.
func RSNEAPOLFromBytes(buffer []byte) (*RSNEAPOL, error) {
	frame := &RSNEAPOL{EAPOL: EAPOL{basePDU: basePDU{tag: TagEAPOL}}}

	offset, err := frame.parseHeader(buffer)
	if err != nil {
		return nil, err
	}

	body := buffer[offset:]
	if len(body) < RSNBodySize {
		return nil, errors.Wrapf(
			ErrBufferTooShort,
			"rsn key descriptor needs %d bytes, got %d",
			RSNBodySize, len(body),
		)
	}

	offset = 0

	frame.DescType = NByte(body, &offset)
	frame.KeyInfo = N2HShort(body, &offset)
	frame.KeyLength = N2HShort(body, &offset)
	frame.ReplayCounter = N2HLongLong(body, &offset)
	offset += copy(frame.Nonce[:], body[offset:])
	offset += copy(frame.KeyIV[:], body[offset:])
	frame.RSC = N2HLongLong(body, &offset)
	frame.ID = N2HLongLong(body, &offset)
	offset += copy(frame.MIC[:], body[offset:])
	frame.WPALength = N2HShort(body, &offset)

	if rest := body[offset:]; len(rest) > 0 && len(rest) == int(frame.WPALength) {
		frame.key = append(frame.key, rest...)
	}

	return frame, nil
}

// Key key data owned by this frame
func (frame *RSNEAPOL) Key() []byte { return frame.key }

// KeyIsElement reports whether the key data holds a structured RSN
// information element.
func (frame *RSNEAPOL) KeyIsElement() bool { return frame.keyIsElement }

// SetKey installs raw key bytes, replacing any structured element.
func (frame *RSNEAPOL) SetKey(key []byte) {
	frame.key = append(frame.key[:0:0], key...)
	frame.keyIsElement = false
}

// SetRSNElement installs a serialized RSN information element,
// replacing any raw key bytes. The 2 byte element header is emitted
// at serialize time.
func (frame *RSNEAPOL) SetRSNElement(element []byte) {
	frame.key = append(frame.key[:0:0], element...)
	frame.keyIsElement = true
}

func (frame *RSNEAPOL) HeaderSize() int {
	padding := 0
	if frame.keyIsElement && len(frame.key) > 0 {
		padding = 2
	}

	return EAPOLHeaderSize + RSNBodySize + len(frame.key) + padding
}

func (frame *RSNEAPOL) TotalSize() int { return totalSize(frame) }

func (frame *RSNEAPOL) WriteSerialization(buffer []byte, _ PDU) {
	offset := frame.writeHeader(buffer, frame.HeaderSize())
	frame.writeBody(buffer[offset:])
}

func (frame *RSNEAPOL) writeBody(buffer []byte) {
	if len(frame.key) > 0 {
		if frame.keyIsElement {
			frame.KeyLength = 0
			frame.WPALength = uint16(len(frame.key) + 2)
		} else {
			frame.KeyLength = 32
			frame.WPALength = uint16(len(frame.key))
		}
	} else {
		frame.WPALength = 0
	}

	offset := 0

	PutByte(buffer, &offset, frame.DescType)
	H2NShort(buffer, &offset, frame.KeyInfo)
	H2NShort(buffer, &offset, frame.KeyLength)
	H2NLongLong(buffer, &offset, frame.ReplayCounter)
	offset += copy(buffer[offset:], frame.Nonce[:])
	offset += copy(buffer[offset:], frame.KeyIV[:])
	H2NLongLong(buffer, &offset, frame.RSC)
	H2NLongLong(buffer, &offset, frame.ID)
	offset += copy(buffer[offset:], frame.MIC[:])
	H2NShort(buffer, &offset, frame.WPALength)

	if frame.keyIsElement && len(frame.key) > 0 {
		PutByte(buffer, &offset, rsnElementID)
		PutByte(buffer, &offset, uint8(len(frame.key)))
	}

	copy(buffer[offset:], frame.key)
}

func (frame *RSNEAPOL) MatchesResponse([]byte) bool { return false }

func (frame *RSNEAPOL) CloneFromBytes(buffer []byte) (PDU, error) {
	cloned, err := RSNEAPOLFromBytes(buffer)
	if err != nil {
		return nil, err
	}

	return cloned, nil
}
