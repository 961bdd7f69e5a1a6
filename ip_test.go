package pdu4go_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frozenpine/pdu4go"
)

func mustAddr(t *testing.T, v string) pdu4go.IPv4Addr {
	t.Helper()

	addr, err := pdu4go.ParseIPv4Addr(v)
	require.NoError(t, err)

	return addr
}

func TestIPRoundTrip(t *testing.T) {
	src := mustAddr(t, "192.168.1.1")
	dst := mustAddr(t, "192.168.1.2")
	payload := []byte("0123456789abcdefghij")

	ip := pdu4go.NewIP(dst, src, pdu4go.NewRawPDU(payload))
	ip.SetNOOPOption()
	ip.SetSecOption(0xde, 0xad, 0xbe, 0xef)

	// NOOP is 1 byte, SEC is 6, padded to 8
	require.Equal(t, 28, ip.HeaderSize())
	require.Equal(t, 48, ip.TotalSize())

	wire := make([]byte, ip.TotalSize())
	pdu4go.SerializeTo(ip, wire, ip)

	assert.EqualValues(t, 0x47, wire[0])
	assert.EqualValues(t, 48, binary.BigEndian.Uint16(wire[2:]))
	assert.EqualValues(t, pdu4go.TagRaw, wire[9])
	assert.NotZero(t, ip.Checksum)

	// recomputing over the finalized header complements to zero
	assert.EqualValues(
		t, 0, ^pdu4go.FoldChecksum(pdu4go.Checksum(wire[:28])),
	)

	parsed, err := pdu4go.IPFromBytes(wire)
	require.NoError(t, err)

	assert.Equal(t, ip.Version, parsed.Version)
	assert.Equal(t, ip.TOS, parsed.TOS)
	assert.Equal(t, ip.TotalLength, parsed.TotalLength)
	assert.Equal(t, ip.Identification, parsed.Identification)
	assert.Equal(t, ip.Flags, parsed.Flags)
	assert.Equal(t, ip.TTL, parsed.TTL)
	assert.Equal(t, ip.Protocol, parsed.Protocol)
	assert.Equal(t, ip.Checksum, parsed.Checksum)
	assert.Equal(t, ip.SrcAddr, parsed.SrcAddr)
	assert.Equal(t, ip.DstAddr, parsed.DstAddr)
	assert.Equal(t, ip.Options(), parsed.Options())
	assert.Equal(t, ip.HeaderSize(), parsed.HeaderSize())

	inner := parsed.InnerPDU()
	require.NotNil(t, inner)
	assert.Equal(t, len(payload), inner.TotalSize())

	raw, ok := inner.(*pdu4go.RawPDU)
	require.True(t, ok)
	assert.Equal(t, payload, raw.Payload())

	// a second serialization keeps the wire bytes stable
	again := make([]byte, parsed.TotalSize())
	pdu4go.SerializeTo(parsed, again, parsed)
	assert.Equal(t, wire, again)
}

func TestIPOptionPadding(t *testing.T) {
	ip := pdu4go.NewIP(pdu4go.IPv4Addr{}, pdu4go.IPv4Addr{}, nil)

	raw := 0
	for idx := 0; idx < 10; idx++ {
		ip.SetNOOPOption()
		raw++

		require.Equal(
			t, 20+(raw+3)/4*4, ip.HeaderSize(),
			"raw option bytes %d", raw,
		)
	}

	wire := pdu4go.Serialize(ip)
	for offset := 20 + raw; offset < ip.HeaderSize(); offset++ {
		assert.Zero(t, wire[offset], "padding byte %d", offset)
	}
}

func TestIPSearchOption(t *testing.T) {
	ip := pdu4go.NewIP(pdu4go.IPv4Addr{}, pdu4go.IPv4Addr{}, nil)
	ip.SetNOOPOption()
	ip.SetSecOption(1, 2, 3)

	require.Nil(
		t, ip.SearchOption(pdu4go.ClassControl, pdu4go.OptRR),
	)

	opt := ip.SearchOption(pdu4go.ClassControl, pdu4go.OptSEC)
	require.NotNil(t, opt)
	assert.Equal(t, 3, opt.DataSize())
	assert.Equal(t, []byte{1, 2, 3}, opt.Data())
}

func TestIPParseErrors(t *testing.T) {
	_, err := pdu4go.IPFromBytes(make([]byte, 19))
	require.ErrorIs(t, err, pdu4go.ErrBufferTooShort)

	truncated := make([]byte, 20)
	truncated[0] = 0x48 // declares 32 header bytes
	_, err = pdu4go.IPFromBytes(truncated)
	require.ErrorIs(t, err, pdu4go.ErrBufferTooShort)

	malformed := make([]byte, 20)
	malformed[0] = 0x44 // 16 header bytes, below the fixed minimum
	_, err = pdu4go.IPFromBytes(malformed)
	require.ErrorIs(t, err, pdu4go.ErrMalformedLength)

	zeroLen := make([]byte, 24)
	zeroLen[0] = 0x46
	zeroLen[20] = 0x82 // SEC option with a zero length byte
	_, err = pdu4go.IPFromBytes(zeroLen)
	require.ErrorIs(t, err, pdu4go.ErrMalformedLength)

	overrun := make([]byte, 24)
	overrun[0] = 0x46
	overrun[20] = 0x82
	overrun[21] = 0x08 // option data past the padded area boundary
	_, err = pdu4go.IPFromBytes(overrun)
	require.ErrorIs(t, err, pdu4go.ErrBufferTooShort)
}

func TestIPMatchesResponse(t *testing.T) {
	src := mustAddr(t, "1.2.3.4")
	dst := mustAddr(t, "5.6.7.8")
	payload := []byte("echo-data")

	sent := pdu4go.NewIP(dst, src, pdu4go.NewRawPDU(payload))

	reply := pdu4go.Serialize(
		pdu4go.NewIP(src, dst, pdu4go.NewRawPDU(payload)),
	)
	assert.True(t, sent.MatchesResponse(reply))

	skewed := pdu4go.Serialize(
		pdu4go.NewIP(src, mustAddr(t, "9.9.9.9"), pdu4go.NewRawPDU(payload)),
	)
	assert.False(t, sent.MatchesResponse(skewed))

	mismatched := pdu4go.Serialize(
		pdu4go.NewIP(src, dst, pdu4go.NewRawPDU([]byte("other-data"))),
	)
	assert.False(t, sent.MatchesResponse(mismatched))

	assert.False(t, sent.MatchesResponse(reply[:10]))
}

func TestIPNested(t *testing.T) {
	inner := pdu4go.NewIP(
		mustAddr(t, "10.0.0.2"), mustAddr(t, "10.0.0.1"),
		pdu4go.NewRawPDU([]byte("tunneled")),
	)
	outer := pdu4go.NewIP(
		mustAddr(t, "172.16.0.2"), mustAddr(t, "172.16.0.1"), inner,
	)

	wire := pdu4go.Serialize(outer)

	// nested IP remaps to the IP-in-IP protocol number
	assert.EqualValues(t, pdu4go.TagIPIP, wire[9])

	// encapsulated header got its checksum filled, the outermost one
	// is left for the raw socket layer
	assert.Zero(t, binary.BigEndian.Uint16(wire[10:]))
	assert.NotZero(t, binary.BigEndian.Uint16(wire[30:]))

	parsed, err := pdu4go.IPFromBytes(wire)
	require.NoError(t, err)

	tunneled, ok := parsed.InnerPDU().(*pdu4go.IP)
	require.True(t, ok)
	assert.Equal(t, inner.SrcAddr, tunneled.SrcAddr)
	assert.Equal(t, inner.DstAddr, tunneled.DstAddr)
	assert.Equal(t, inner.TotalSize(), tunneled.TotalSize())
}

func TestIPCloneFromBytes(t *testing.T) {
	src := mustAddr(t, "192.168.1.1")
	dst := mustAddr(t, "192.168.1.2")

	ip := pdu4go.NewIP(dst, src, pdu4go.NewRawPDU([]byte("payload")))
	wire := make([]byte, ip.TotalSize())
	pdu4go.SerializeTo(ip, wire, ip)

	cloned, err := ip.CloneFromBytes(wire)
	require.NoError(t, err)

	clonedIP, ok := cloned.(*pdu4go.IP)
	require.True(t, ok)
	assert.Equal(t, ip.SrcAddr, clonedIP.SrcAddr)
	assert.Equal(t, ip.DstAddr, clonedIP.DstAddr)
	assert.Equal(t, ip.TotalSize(), clonedIP.TotalSize())
	require.NotNil(t, clonedIP.InnerPDU())
	assert.Equal(t, 7, clonedIP.InnerPDU().TotalSize())

	_, err = ip.CloneFromBytes(wire[:10])
	require.ErrorIs(t, err, pdu4go.ErrBufferTooShort)
}

func TestIPDispatch(t *testing.T) {
	invoked := false

	pdu4go.RegisterParser(
		pdu4go.ProtoTag(0x63),
		func(buffer []byte) (pdu4go.PDU, error) {
			invoked = true
			return pdu4go.NewRawPDUWithTag(pdu4go.ProtoTag(0x63), buffer), nil
		},
	)

	ip := pdu4go.NewIP(
		pdu4go.IPv4Addr{10, 0, 0, 2}, pdu4go.IPv4Addr{10, 0, 0, 1},
		pdu4go.NewRawPDUWithTag(pdu4go.ProtoTag(0x63), []byte("opaque")),
	)

	parsed, err := pdu4go.IPFromBytes(pdu4go.Serialize(ip))
	require.NoError(t, err)
	assert.True(t, invoked)
	assert.EqualValues(t, 0x63, parsed.Protocol)
}
