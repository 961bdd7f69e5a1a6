package pdu4go

// SocketType selects the kernel facility used to move a serialized
// layer 3 packet.
type SocketType int

const (
	IPSocket SocketType = iota
	ICMPSocket
)

func (typ SocketType) String() string {
	switch typ {
	case ICMPSocket:
		return "icmp"
	default:
		return "ip"
	}
}

// PacketSender transmits serialized units and correlates replies. The
// implementation lives outside this library; the core only needs the
// dispatch boundary.
//
// A sender matches incoming buffers against pdu.MatchesResponse and
// hands back the parsed reply chain.
type PacketSender interface {
	// SendL3 serializes pdu and transmits it towards dst.
	SendL3(pdu PDU, dst IPv4Addr, typ SocketType) error
	// RecvL3 blocks until a buffer correlated with pdu arrives and
	// returns the parsed reply.
	RecvL3(pdu PDU, dst IPv4Addr, typ SocketType) (PDU, error)
}
