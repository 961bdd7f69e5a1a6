package pdu4go

import (
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// IPv4Addr ip v4 address in wire order
type IPv4Addr [4]byte

func (addr IPv4Addr) String() string {
	return fmt.Sprintf(
		"%d.%d.%d.%d",
		addr[0], addr[1], addr[2], addr[3],
	)
}

// IP view the address as a net.IP
func (addr IPv4Addr) IP() net.IP {
	return net.IP(addr[:])
}

// MarshalText marshal address to text
func (addr IPv4Addr) MarshalText() ([]byte, error) {
	return []byte(addr.String()), nil
}

// UnmarshalText unmarshal address from dotted quad text
func (addr *IPv4Addr) UnmarshalText(text []byte) error {
	parsed, err := ParseIPv4Addr(string(text))
	if err != nil {
		return err
	}

	*addr = parsed

	return nil
}

// ParseIPv4Addr create IPv4Addr from dotted quad string
func ParseIPv4Addr(v string) (IPv4Addr, error) {
	addr := IPv4Addr{}

	ip := net.ParseIP(v)
	if ip == nil || ip.To4() == nil {
		return addr, errors.New("invalid ipv4 addr: " + v)
	}

	copy(addr[:], ip.To4())

	return addr, nil
}
