package pdu4go

import (
	"encoding/binary"
	"strconv"

	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"
)

// IPv4HeaderBaseSize fixed header size, options excluded
const IPv4HeaderBaseSize = 20

// DefaultTTL initial time to live for constructed headers
const DefaultTTL = 128

// OptionClass 2 bit option class field
type OptionClass uint8

const (
	ClassControl     OptionClass = 0
	ClassMeasurement OptionClass = 2
)

// OptionNumber 5 bit option number field
type OptionNumber uint8

const (
	OptEOL       OptionNumber = 0
	OptNOOP      OptionNumber = 1
	OptSEC       OptionNumber = 2
	OptLSRR      OptionNumber = 3
	OptTimestamp OptionNumber = 4
	OptExtSec    OptionNumber = 5
	OptRR        OptionNumber = 7
	OptSID       OptionNumber = 8
	OptSSRR      OptionNumber = 9
	OptMTUProbe  OptionNumber = 11
	OptMTUReply  OptionNumber = 12
	OptEIP       OptionNumber = 17
	OptTR        OptionNumber = 18
	OptAddExt    OptionNumber = 19
	OptRtrAlt    OptionNumber = 20
	OptSDB       OptionNumber = 21
	OptDPS       OptionNumber = 23
	OptUMP       OptionNumber = 24
	OptQS        OptionNumber = 25
)

// multiByteOption reports whether the option kind carries a length
// byte and payload. End of list and no operation never do.
func multiByteOption(number OptionNumber) bool {
	switch number {
	case OptSEC, OptLSRR, OptTimestamp, OptExtSec, OptRR, OptSID,
		OptSSRR, OptMTUProbe, OptMTUReply, OptEIP, OptTR, OptAddExt,
		OptRtrAlt, OptSDB, OptDPS, OptUMP, OptQS:
		return true
	}

	return false
}

// IPOption one encoded option of an IPv4 header.
//
// For multibyte kinds data holds the wire length byte followed by the
// payload, so data[0] == len(data). Single byte kinds keep data
// empty.
type IPOption struct {
	// Copied copied on fragmentation flag, 1 bit
	Copied uint8
	// Class option class, 2 bits
	Class OptionClass
	// Number option number, 5 bits
	Number OptionNumber

	data []byte
}

func (opt *IPOption) typeByte() uint8 {
	return opt.Copied&0x01<<7 |
		uint8(opt.Class)&0x03<<5 |
		uint8(opt.Number)&0x1f
}

// Data option payload without the leading length byte
func (opt *IPOption) Data() []byte {
	if len(opt.data) == 0 {
		return nil
	}

	return opt.data[1:]
}

// DataSize payload size without the leading length byte
func (opt *IPOption) DataSize() int {
	if len(opt.data) == 0 {
		return 0
	}

	return len(opt.data) - 1
}

// WireSize type byte plus stored blob
func (opt *IPOption) WireSize() int {
	return 1 + len(opt.data)
}

func (opt *IPOption) write(buffer []byte) int {
	buffer[0] = opt.typeByte()

	return 1 + copy(buffer[1:], opt.data)
}

// IP an IPv4 header layer.
//
// TotalLength, Protocol and the header length are finalized from the
// attached payload at serialization time; values stored here between
// serializations are whatever the last parse or serialize produced.
type IP struct {
	basePDU

	// Version 4 bits
	Version uint8
	// TOS type of service
	TOS uint8
	// TotalLength header plus payload size
	TotalLength uint16
	// Identification fragment group id
	Identification uint16
	// Flags 3 bits + fragment offset 13 bits
	Flags uint16
	// TTL time to live
	TTL uint8
	// Protocol payload protocol number
	Protocol uint8
	// Checksum header checksum; zero means compute at serialize time
	Checksum uint16
	// SrcAddr source address
	SrcAddr IPv4Addr
	// DstAddr destination address
	DstAddr IPv4Addr

	// headLen parsed header length in 32 bit words, recomputed from
	// the option totals at serialize time
	headLen uint8

	options []IPOption
	// paddedOptionsSize option area size rounded to the 32 bit
	// boundary; on parsed headers it comes from the IHL field instead
	paddedOptionsSize int
}

// NewIP builds a header with version 4, default TTL and id 1, payload
// attached as the inner unit.
func NewIP(dst, src IPv4Addr, inner PDU) *IP {
	ip := &IP{
		basePDU:        basePDU{tag: TagIP},
		Version:        4,
		TTL:            DefaultTTL,
		Identification: 1,
		SrcAddr:        src,
		DstAddr:        dst,
	}

	if inner != nil {
		ip.SetInnerPDU(inner)
	}

	return ip
}

// IPFromBytes parses a header and, recursively, its payload. Option
// and payload bytes are copied out of buffer, so the returned chain
// owns its storage independent of the caller's buffer lifetime.
func IPFromBytes(buffer []byte) (*IP, error) {
	if len(buffer) < IPv4HeaderBaseSize {
		return nil, errors.Wrapf(
			ErrBufferTooShort,
			"ip header needs %d bytes, got %d",
			IPv4HeaderBaseSize, len(buffer),
		)
	}

	ip := &IP{basePDU: basePDU{tag: TagIP}}

	offset := 0

	verIHL := NByte(buffer, &offset)
	ip.Version = verIHL >> 4
	ip.headLen = verIHL & 0x0f

	ip.TOS = NByte(buffer, &offset)
	ip.TotalLength = N2HShort(buffer, &offset)
	ip.Identification = N2HShort(buffer, &offset)
	ip.Flags = N2HShort(buffer, &offset)
	ip.TTL = NByte(buffer, &offset)
	ip.Protocol = NByte(buffer, &offset)
	ip.Checksum = N2HShort(buffer, &offset)

	offset += copy(ip.SrcAddr[:], buffer[offset:])
	offset += copy(ip.DstAddr[:], buffer[offset:])

	headLen := int(ip.headLen) * 4
	if headLen < IPv4HeaderBaseSize {
		return nil, errors.Wrapf(
			ErrMalformedLength,
			"ip head len %d words below fixed header", ip.headLen,
		)
	}
	if len(buffer) < headLen {
		return nil, errors.Wrapf(
			ErrBufferTooShort,
			"ip header declares %d bytes, got %d",
			headLen, len(buffer),
		)
	}

	ip.paddedOptionsSize = headLen - IPv4HeaderBaseSize

	if err := ip.parseOptions(buffer[IPv4HeaderBaseSize:headLen]); err != nil {
		return nil, err
	}

	if payload := buffer[headLen:]; len(payload) > 0 {
		inner, err := parsePayload(ProtoTag(ip.Protocol), payload)
		if err != nil {
			return nil, err
		}

		ip.SetInnerPDU(inner)
	}

	return ip, nil
}

// parseOptions scans the padded option area byte by byte, stopping at
// an end of list byte or the area boundary.
func (ip *IP) parseOptions(area []byte) error {
	offset := 0

	for offset < len(area) && area[offset] != 0 {
		typeByte := area[offset]
		offset++

		opt := IPOption{
			Copied: typeByte >> 7,
			Class:  OptionClass(typeByte >> 5 & 0x03),
			Number: OptionNumber(typeByte & 0x1f),
		}

		if multiByteOption(opt.Number) {
			if offset >= len(area) {
				return errors.Wrap(
					ErrBufferTooShort, "ip option length byte",
				)
			}

			length := int(area[offset])
			if length < 1 {
				return errors.Wrapf(
					ErrMalformedLength, "ip option length %d", length,
				)
			}
			if len(area)-offset < length {
				return errors.Wrapf(
					ErrBufferTooShort,
					"ip option needs %d bytes, got %d",
					length, len(area)-offset,
				)
			}

			opt.data = append(opt.data, area[offset:offset+length]...)
			offset += length
		}

		ip.options = append(ip.options, opt)
	}

	return nil
}

// Options returns the option sequence in insertion order.
func (ip *IP) Options() []IPOption { return ip.options }

// optionsSize raw option byte total, recomputed from the sequence so
// the counter can never drift from the list contents.
func (ip *IP) optionsSize() int {
	size := 0

	for idx := range ip.options {
		size += ip.options[idx].WireSize()
	}

	return size
}

func paddedSize(size int) int {
	return (size + 3) &^ 3
}

// SetOption appends one option. Single byte kinds (end of list, no
// operation) carry no data; other kinds store a length prefixed blob
// with length = data size + 1.
func (ip *IP) SetOption(
	copied uint8, class OptionClass, number OptionNumber, data ...byte,
) {
	opt := IPOption{Copied: copied & 0x01, Class: class, Number: number}

	if len(data) > 0 {
		opt.data = make([]byte, 0, len(data)+1)
		opt.data = append(opt.data, byte(len(data)+1))
		opt.data = append(opt.data, data...)
	}

	ip.options = append(ip.options, opt)
	ip.paddedOptionsSize = paddedSize(ip.optionsSize())
}

// SetEOLOption appends an end of list option.
func (ip *IP) SetEOLOption() {
	ip.SetOption(0, ClassControl, OptEOL)
}

// SetNOOPOption appends a no operation option.
func (ip *IP) SetNOOPOption() {
	ip.SetOption(0, ClassControl, OptNOOP)
}

// SetSecOption appends a security option with the given payload.
func (ip *IP) SetSecOption(data ...byte) {
	ip.SetOption(1, ClassControl, OptSEC, data...)
}

// SearchOption returns the first option matching class and number,
// nil when absent.
func (ip *IP) SearchOption(class OptionClass, number OptionNumber) *IPOption {
	for idx := range ip.options {
		if ip.options[idx].Class == class && ip.options[idx].Number == number {
			return &ip.options[idx]
		}
	}

	return nil
}

// HeadLen header length in 32 bit words, as parsed or last
// serialized
func (ip *IP) HeadLen() uint8 { return ip.headLen }

func (ip *IP) HeaderSize() int {
	return IPv4HeaderBaseSize + ip.paddedOptionsSize
}

func (ip *IP) TotalSize() int { return totalSize(ip) }

func (ip *IP) WriteSerialization(buffer []byte, parent PDU) {
	headerSize := ip.HeaderSize()

	if inner := ip.InnerPDU(); inner != nil {
		tag := inner.Tag()
		if tag == TagIP {
			tag = TagIPIP
		}
		ip.Protocol = uint8(tag)
	}

	ip.TotalLength = uint16(ip.TotalSize())
	ip.headLen = uint8(headerSize / 4)

	offset := 0

	PutByte(buffer, &offset, ip.Version<<4|ip.headLen&0x0f)
	PutByte(buffer, &offset, ip.TOS)
	H2NShort(buffer, &offset, ip.TotalLength)
	H2NShort(buffer, &offset, ip.Identification)
	H2NShort(buffer, &offset, ip.Flags)
	PutByte(buffer, &offset, ip.TTL)
	PutByte(buffer, &offset, ip.Protocol)
	H2NShort(buffer, &offset, ip.Checksum)

	offset += copy(buffer[offset:], ip.SrcAddr[:])
	offset += copy(buffer[offset:], ip.DstAddr[:])

	for idx := range ip.options {
		offset += ip.options[idx].write(buffer[offset:])
	}

	// zero fill between raw and padded option totals
	for ; offset < headerSize; offset++ {
		buffer[offset] = 0
	}

	// An outermost header (nil parent) leaves a zero checksum for
	// the raw socket layer to fill.
	if parent != nil && ip.Checksum == 0 {
		ip.Checksum = ^FoldChecksum(Checksum(buffer[:headerSize]))
		binary.BigEndian.PutUint16(buffer[10:], ip.Checksum)
	}
}

// MatchesResponse reports whether peer holds a header whose address
// pair mirrors this one, delegating to the inner unit over the bytes
// past the peer's declared header length.
func (ip *IP) MatchesResponse(peer []byte) bool {
	if len(peer) < IPv4HeaderBaseSize {
		return false
	}

	var src, dst IPv4Addr
	copy(src[:], peer[12:16])
	copy(dst[:], peer[16:20])

	if ip.DstAddr != src || ip.SrcAddr != dst {
		return false
	}

	inner := ip.InnerPDU()
	if inner == nil {
		return true
	}

	headLen := int(peer[0]&0x0f) * 4
	if len(peer) < headLen {
		return false
	}

	return inner.MatchesResponse(peer[headLen:])
}

// CloneFromBytes parses an independent copy of the header and its
// payload, capping the header bytes at the declared total length.
func (ip *IP) CloneFromBytes(buffer []byte) (PDU, error) {
	if len(buffer) < IPv4HeaderBaseSize {
		return nil, errors.Wrapf(
			ErrBufferTooShort,
			"ip header needs %d bytes, got %d",
			IPv4HeaderBaseSize, len(buffer),
		)
	}

	headLen := int(buffer[0]&0x0f) * 4
	if len(buffer) < headLen {
		return nil, errors.Wrapf(
			ErrBufferTooShort,
			"ip header declares %d bytes, got %d",
			headLen, len(buffer),
		)
	}

	var inner PDU

	if len(buffer) > headLen {
		var err error

		inner, err = parsePayload(ProtoTag(buffer[9]), buffer[headLen:])
		if err != nil {
			return nil, err
		}
	}

	size := len(buffer)
	if declared := int(binary.BigEndian.Uint16(buffer[2:])); declared < size {
		size = declared
	}

	cloned, err := IPFromBytes(buffer[:size])
	if err != nil {
		return nil, err
	}

	if inner != nil {
		cloned.SetInnerPDU(inner)
	}

	return cloned, nil
}

// Send serializes and transmits the unit through sender, picking the
// ICMP socket mode when the payload is ICMP.
func (ip *IP) Send(sender PacketSender) error {
	return sender.SendL3(ip, ip.DstAddr, ip.socketType())
}

// RecvResponse blocks on sender for a reply correlated with this
// unit.
func (ip *IP) RecvResponse(sender PacketSender) (PDU, error) {
	return sender.RecvL3(ip, ip.DstAddr, ip.socketType())
}

func (ip *IP) socketType() SocketType {
	if inner := ip.InnerPDU(); inner != nil && inner.Tag() == TagICMP {
		return ICMPSocket
	}

	return IPSocket
}

func (ip *IP) String() string {
	buff := bytebufferpool.Get()
	defer bytebufferpool.Put(buff)

	buff.WriteString("[ip] ")
	buff.WriteString(ip.SrcAddr.String())
	buff.WriteString(" -> ")
	buff.WriteString(ip.DstAddr.String())
	buff.WriteString(" proto ")
	buff.WriteString(ProtoTag(ip.Protocol).String())
	buff.WriteString(" len ")
	buff.WriteString(strconv.Itoa(ip.TotalSize()))

	return buff.String()
}
